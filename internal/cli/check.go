package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotpipe/pkg/errors"
	"github.com/matzehuels/dotpipe/pkg/source"
)

// checkCommand parses DOT files without running Graphviz.
func (c *CLI) checkCommand() *cobra.Command {
	var encoding string

	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Check DOT files for syntax errors",
		Long: `Parse DOT files with the embedded Graphviz parser. No layout is run and the
Graphviz executables are not required.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if encoding == "" {
				encoding = cfg.Encoding
			}

			var failed int
			for _, path := range args {
				src, err := source.FromFile(path, encoding, nil, nil)
				if err == nil {
					err = src.Check(cmd.Context())
				}
				if err != nil {
					failed++
					printError("%s: %s", path, errors.UserMessage(err))
					continue
				}
				printSuccess("%s", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) failed to parse", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&encoding, "encoding", "e", "", "source encoding (default from config, utf-8)")
	return cmd
}

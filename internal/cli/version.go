package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotpipe/pkg/buildinfo"
)

// versionCommand reports the installed Graphviz version next to the
// dotpipe build.
func (c *CLI) versionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the installed Graphviz version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := c.client()
			if err != nil {
				return err
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			ctx, cancel := cfg.WithTimeout(cmd.Context())
			defer cancel()

			v, err := client.Version(ctx)
			if err != nil {
				return err
			}

			if short {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), v)
				return err
			}
			printKeyValue("graphviz", v.String())
			printKeyValue("binary", client.Binary)
			printKeyValue("dotpipe", buildinfo.Version)
			printKeyValue("commit", buildinfo.Commit)
			printKeyValue("built", buildinfo.Date)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "print only the Graphviz version")
	return cmd
}

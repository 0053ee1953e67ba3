package cli

import (
	"context"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotpipe/pkg/backend"
	"github.com/matzehuels/dotpipe/pkg/source"
)

// unflattenCommand creates the unflatten command, which improves the aspect
// ratio of wide graphs before layout.
func (c *CLI) unflattenCommand() *cobra.Command {
	var (
		opts     backend.UnflattenOptions
		output   string
		encoding string
	)

	cmd := &cobra.Command{
		Use:   "unflatten [FILE]",
		Short: "Adjust the aspect ratio of wide graphs",
		Long: `Run the Graphviz unflatten tool over DOT source read from FILE or stdin.
The adjusted source is written to stdout, or to --output.`,
		Example: `  dotpipe unflatten -l 3 -f wide.gv | dotpipe pipe -T svg
  dotpipe unflatten -c 4 -o tall.gv wide.gv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := "-"
			if len(args) == 1 {
				in = args[0]
			}
			return c.runUnflatten(cmd.Context(), cmd, in, output, encoding, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Stagger, "stagger", "l", 0, "stagger the minimum length of leaf edges between 1 and N")
	cmd.Flags().BoolVarP(&opts.Fanout, "fanout", "f", false, "also stagger nodes with one in and one out edge (requires --stagger)")
	cmd.Flags().IntVarP(&opts.Chain, "chain", "c", 0, "form disconnected nodes into chains of up to N nodes")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&encoding, "encoding", "e", "", "source encoding (default from config, utf-8)")

	return cmd
}

func (c *CLI) runUnflatten(ctx context.Context, cmd *cobra.Command, in, output, encoding string, opts backend.UnflattenOptions) error {
	// Fail on bad flags before touching the input.
	if _, err := opts.Args(); err != nil {
		return err
	}

	client, defaults, err := c.client()
	if err != nil {
		return err
	}
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if encoding == "" {
		encoding = cfg.Encoding
	}

	src, err := readSource(cmd.InOrStdin(), in, encoding, client, defaults)
	if err != nil {
		return err
	}

	ctx, cancel := cfg.WithTimeout(ctx)
	defer cancel()

	result, err := src.Unflatten(ctx, opts)
	if err != nil {
		return err
	}

	if output != "" && output != "-" {
		result.Directory, result.Filename = filepath.Split(output)
		path, err := result.Save()
		if err != nil {
			return err
		}
		printSuccess("Wrote %s", path)
		return nil
	}

	data, err := result.Bytes()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// readSource loads DOT source from path, or from r when path is "-".
func readSource(r io.Reader, path, encoding string, b source.Backend, defaults *backend.Defaults) (*source.Source, error) {
	if path != "-" {
		return source.FromFile(path, encoding, b, defaults)
	}
	codec, err := backend.LookupEncoding(encoding)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text, err := codec.Decode(data)
	if err != nil {
		return nil, err
	}
	s := source.New(text, b, defaults)
	s.Encoding = encoding
	return s, nil
}

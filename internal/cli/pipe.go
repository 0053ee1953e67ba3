package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotpipe/pkg/backend"
	"github.com/matzehuels/dotpipe/pkg/cache"
)

// pipeOpts holds the command-line flags for the pipe command.
type pipeOpts struct {
	requestFlags
	output   string // output file, "-" or empty for stdout
	encoding string // input encoding for --stream
	stream   bool   // feed stdin line by line
	noCache  bool   // bypass the result cache
	force    bool   // write binary output to a terminal
	quiet    bool   // do not forward Graphviz warnings
}

// pipeCommand creates the pipe command, which lays out DOT read from a file
// or stdin and writes the result to stdout.
func (c *CLI) pipeCommand() *cobra.Command {
	var opts pipeOpts

	cmd := &cobra.Command{
		Use:   "pipe [FILE]",
		Short: "Lay out DOT from a file or stdin and write the result",
		Long: `Pipe DOT source through a Graphviz layout engine. The source is read from
FILE, or from stdin when FILE is omitted or "-". The result is written to
stdout unless --output is given.

Results are cached by command line and input; use --no-cache to bypass.`,
		Example: `  dotpipe pipe -T svg graph.gv > graph.svg
  cat graph.gv | dotpipe pipe -K neato -T png -o graph.png
  generate-edges | dotpipe pipe --stream -T svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := "-"
			if len(args) == 1 {
				in = args[0]
			}
			return c.runPipe(cmd.Context(), cmd, in, &opts)
		},
	}

	opts.register(cmd, "output format (default from config, pdf)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.encoding, "encoding", "e", "", "input encoding for --stream (default from config, utf-8)")
	cmd.Flags().BoolVar(&opts.stream, "stream", false, "stream the input line by line without buffering or caching")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the result cache")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "write binary output to a terminal")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not log Graphviz warnings")

	return cmd
}

func (c *CLI) runPipe(ctx context.Context, cmd *cobra.Command, in string, opts *pipeOpts) error {
	logger := loggerFromContext(ctx)

	client, defaults, err := c.client()
	if err != nil {
		return err
	}
	cfg, err := c.config()
	if err != nil {
		return err
	}

	reqs, err := opts.requests(defaults)
	if err != nil {
		return err
	}
	if len(reqs) != 1 {
		return fmt.Errorf("pipe takes a single format, got %d", len(reqs))
	}
	req := reqs[0]

	var callOpts []backend.CallOption
	if opts.quiet {
		callOpts = append(callOpts, backend.WithQuiet())
	}

	r := cmd.InOrStdin()
	if in != "-" {
		f, err := os.Open(in)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	ctx, cancel := cfg.WithTimeout(ctx)
	defer cancel()

	// Progress only shows when the output goes to a file; stdout may be
	// the terminal the spinner draws on.
	toFile := opts.output != "" && opts.output != "-"
	spinner := newSpinnerWithContext(ctx, "Laying out "+req.OutputFormat()+"...")
	spinner.enabled = spinner.enabled && toFile
	spinner.Start()
	defer spinner.Stop()

	start := time.Now()
	var (
		out    []byte
		cached bool
	)
	if opts.stream {
		encoding := opts.encoding
		if encoding == "" {
			encoding = cfg.Encoding
		}
		out, err = client.PipeLines(ctx, req, backend.ReaderLines(r), encoding, callOpts...)
	} else {
		out, cached, err = c.pipeCached(ctx, client, req, r, opts.noCache, callOpts)
	}
	if err != nil {
		return err
	}
	logger.Debug("piped", "format", req.OutputFormat(), "bytes", len(out), "cached", cached)

	if toFile {
		if err := os.WriteFile(opts.output, out, 0o644); err != nil {
			return err
		}
		spinner.StopWithSuccess("Wrote " + opts.output)
		printRunStats(len(out), time.Since(start), cached)
		return nil
	}

	w := cmd.OutOrStdout()
	if !opts.force && writerIsTerminal(w) && !utf8.Valid(out) {
		return fmt.Errorf("refusing to write %s output to a terminal, use --output or --force", req.OutputFormat())
	}
	_, err = w.Write(out)
	return err
}

// pipeCached reads all of r and pipes it, consulting the result cache.
func (c *CLI) pipeCached(ctx context.Context, client *backend.Client, req backend.Request, r io.Reader, noCache bool, callOpts []backend.CallOption) ([]byte, bool, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, false, err
	}
	command, err := client.Command(req)
	if err != nil {
		return nil, false, err
	}

	cfg, err := c.config()
	if err != nil {
		return nil, false, err
	}
	ch := c.openCache(ctx, noCache)
	defer ch.Close()

	cached := true
	key := cache.NewDefaultKeyer().PipeKey(command.Argv(), data)
	out, err := cache.Fetch(ctx, ch, key, cache.KeyTypePipe, cfg.Cache.TTL.Duration, func() ([]byte, error) {
		cached = false
		return client.Pipe(ctx, req, data, callOpts...)
	})
	return out, cached, err
}

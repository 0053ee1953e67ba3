package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/dotpipe/pkg/backend"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	requestFlags
	pick  bool // choose output formats interactively
	quiet bool // do not forward Graphviz warnings
	jobs  int  // concurrent subprocesses
}

// renderCommand creates the render command. Each file is rendered once per
// requested format, next to the file itself.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{jobs: runtime.NumCPU()}

	cmd := &cobra.Command{
		Use:   "render FILE...",
		Short: "Render DOT files next to their source",
		Long: `Render DOT files with a Graphviz layout engine. The output is written next to
each file, named after it with the format appended (graph.gv -> graph.gv.pdf).

Several formats can be given at once: -T svg,png renders both.`,
		Example: `  dotpipe render graph.gv
  dotpipe render -K neato -T svg,png graphs/*.gv
  dotpipe render -T png -r cairo --formatter gd graph.gv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args, &opts)
		},
	}

	opts.register(cmd, "output format(s), comma-separated (default from config, pdf)")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose output formats interactively")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not log Graphviz warnings")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", opts.jobs, "number of files rendered concurrently")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, files []string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	client, defaults, err := c.client()
	if err != nil {
		return err
	}
	cfg, err := c.config()
	if err != nil {
		return err
	}

	if opts.pick {
		if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
			return fmt.Errorf("--pick requires an interactive terminal")
		}
		picked, err := pickFormats(backend.Sorted(backend.Formats), splitList(opts.format)...)
		if err != nil {
			return err
		}
		if len(picked) == 0 {
			printInfo("Nothing selected")
			return nil
		}
		opts.format = strings.Join(picked, ",")
	}

	reqs, err := opts.requests(defaults)
	if err != nil {
		return err
	}

	var callOpts []backend.CallOption
	if opts.quiet {
		callOpts = append(callOpts, backend.WithQuiet())
	}

	ctx, cancel := cfg.WithTimeout(ctx)
	defer cancel()

	total := len(files) * len(reqs)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering 0/%d...", total))
	spinner.Start()

	prog := newProgress(logger)
	rendered := make([]string, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.jobs, 1))
	for i, file := range files {
		for j, req := range reqs {
			g.Go(func() error {
				out, err := client.Render(gctx, req, file, callOpts...)
				if err != nil {
					return fmt.Errorf("%s: %w", file, err)
				}
				rendered[i*len(reqs)+j] = out
				spinner.SetMessage(fmt.Sprintf("Rendering %d/%d...", prog.add(), total))
				logger.Debug("rendered", "file", file, "output", out)
				return nil
			})
		}
	}

	err = g.Wait()
	switch {
	case err == nil, spinner.Cancelled():
		spinner.Stop()
	default:
		spinner.StopWithError("Rendering failed")
	}
	if err != nil {
		return err
	}
	prog.done("Rendered")

	for _, out := range rendered {
		printFile(out)
	}
	return nil
}

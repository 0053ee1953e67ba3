// Package cli implements the dotpipe command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dotpipe/pkg/backend"
	"github.com/matzehuels/dotpipe/pkg/buildinfo"
	"github.com/matzehuels/dotpipe/pkg/cache"
	"github.com/matzehuels/dotpipe/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "dotpipe"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "dotpipe renders DOT graphs with the Graphviz executables",
		Long: `dotpipe drives the Graphviz layout programs (dot, neato, circo, ...) as
subprocesses. It renders DOT files next to their source, pipes graphs through
a layout engine, reports the installed Graphviz version and can serve the
same operations over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/dotpipe/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.pipeCommand())
	root.AddCommand(c.unflattenCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.formatsCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	c.cfg = cfg
	return cfg, nil
}

// client returns a backend client and the configured defaults.
func (c *CLI) client() (*backend.Client, *backend.Defaults, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, nil, err
	}
	defaults, err := cfg.Defaults()
	if err != nil {
		return nil, nil, err
	}
	return cfg.Client(c.Logger), defaults, nil
}

// openCache returns the configured cache, or a no-op cache when noCache is
// set or the cache cannot be opened.
func (c *CLI) openCache(ctx context.Context, noCache bool) cache.Cache {
	cfg, err := c.config()
	if noCache || err != nil {
		return cache.NewNullCache()
	}
	ch, err := cfg.OpenCache(ctx)
	if err != nil {
		c.Logger.Warn("cache unavailable", "err", err)
		return cache.NewNullCache()
	}
	return ch
}

// =============================================================================
// Flag Helpers
// =============================================================================

// requestFlags are the layout flags shared by render and pipe.
type requestFlags struct {
	engine    string
	format    string
	renderer  string
	formatter string
}

func (f *requestFlags) register(cmd *cobra.Command, formatHelp string) {
	cmd.Flags().StringVarP(&f.engine, "engine", "K", "", "layout engine (default from config, dot)")
	cmd.Flags().StringVarP(&f.format, "format", "T", "", formatHelp)
	cmd.Flags().StringVarP(&f.renderer, "renderer", "r", "", "output renderer, e.g. cairo")
	cmd.Flags().StringVar(&f.formatter, "formatter", "", "output formatter, e.g. gd (requires --renderer)")

	_ = cmd.RegisterFlagCompletionFunc("engine", completeFrom(backend.Engines))
	_ = cmd.RegisterFlagCompletionFunc("format", completeFrom(backend.Formats))
	_ = cmd.RegisterFlagCompletionFunc("renderer", completeFrom(backend.Renderers))
	_ = cmd.RegisterFlagCompletionFunc("formatter", completeFrom(backend.Formatters))
}

// requests returns one normalized request per comma-separated format.
func (f *requestFlags) requests(defaults *backend.Defaults) ([]backend.Request, error) {
	var reqs []backend.Request
	for _, format := range splitList(f.format) {
		req, err := defaults.Apply(backend.Request{
			Engine:    f.engine,
			Format:    format,
			Renderer:  f.renderer,
			Formatter: f.formatter,
		}).Normalize()
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// splitList splits a comma-separated flag value, dropping empty items.
// An empty value yields a single empty item so that defaults apply.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

func completeFrom(set map[string]bool) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return backend.Sorted(set), cobra.ShellCompDirectiveNoFileComp
	}
}

// =============================================================================
// Terminal Detection
// =============================================================================

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// writerIsTerminal reports whether w is a terminal. Non-file writers never are.
func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

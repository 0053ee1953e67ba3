package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotpipe/pkg/cache"
	"github.com/matzehuels/dotpipe/pkg/server"
)

// serveCommand starts the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve pipe, unflatten and version over HTTP. Results are cached in the
configured cache (Redis or the file cache) and every run is recorded in the
history store (MongoDB or an in-memory ring).`,
		Example: `  dotpipe serve --addr :8080
  curl --data-binary @graph.gv 'localhost:8080/v1/pipe?format=svg'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	logger := loggerFromContext(ctx)

	client, defaults, err := c.client()
	if err != nil {
		return err
	}
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	keyer := cache.NewDefaultKeyer()
	if v, err := client.Version(ctx); err != nil {
		printWarning("Graphviz version unavailable, serving anyway: %v", err)
	} else {
		keyer = cache.NewScopedKeyer(keyer, "gv:"+v.String()+":")
		logger.Debug("graphviz", "version", v)
	}

	store, err := cfg.OpenHistory(ctx)
	if err != nil {
		return err
	}

	srv := server.New(client, server.Options{
		Logger:      logger,
		Defaults:    defaults,
		Cache:       c.openCache(ctx, noCache),
		Keyer:       keyer,
		CacheTTL:    cfg.Cache.TTL.Duration,
		History:     store,
		MaxBodySize: cfg.Server.MaxBodySize,
		Timeout:     cfg.Timeout.Duration,
	})
	defer func() {
		if err := srv.Close(context.Background()); err != nil {
			logger.Warn("close server", "err", err)
		}
	}()

	printInfo("Serving on %s", StyleLink.Render(serverURL(addr)))
	printNextStep("Try it", fmt.Sprintf("curl --data-binary @graph.gv '%s/v1/pipe?format=svg'", serverURL(addr)))

	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return err
	}
	printSuccess("Server stopped")
	return nil
}

// serverURL turns a listen address into a URL for display.
func serverURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/mealyetf/internal/server"
	"github.com/matzehuels/mealyetf/pkg/observability"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noCache   bool
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion API over HTTP",
		Long: `Serve the conversion API over HTTP.

  POST /v1/convert?format=etf   body: machine document (JSON, YAML or TOML by Content-Type)
  GET  /v1/formats
  GET  /healthz
  GET  /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			var metrics *server.Metrics
			if !noMetrics {
				metrics = server.NewMetrics()
				metrics.Install()
				defer observability.Reset()
			}

			printInfo("Serving on %s", StyleHighlight.Render(addr))
			printDetail("cache: %s", c.cacheBackend(noCache))
			return server.New(runner, metrics, c.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+defaultServerAddr+")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}

func (c *CLI) cacheBackend(noCache bool) string {
	if noCache {
		return backendNone
	}
	return c.Config.Cache.Backend
}

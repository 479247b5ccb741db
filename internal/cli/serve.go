package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/coalesce/pkg/api"
	"github.com/matzehuels/coalesce/pkg/buildinfo"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simplify, render and simulate API over HTTP",
		Long: `Serve starts an HTTP server exposing:

  GET  /healthz
  GET  /version
  POST /v1/simplify          pipeline options with a table document
  POST /v1/render/{format}   table document, returns dot, svg, png, json or toml
  POST /v1/simulate          simulation parameters

The server shuts down gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", api.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := api.New(runner, c.Logger, api.Config{
		MaxBodyBytes:      c.Config.Server.MaxBodyBytes,
		MaxSimulationWork: c.Config.Server.MaxSimulationWork,
	})
	backend := "files"
	switch {
	case noCache || c.Config.Cache.Disabled:
		backend = "none"
	case c.Config.Cache.RedisAddr != "":
		backend = "redis " + c.Config.Cache.RedisAddr
	}
	printInfo("Serving on %s", StyleLink.Render(addr))
	printKeyValue("cache", backend)
	printKeyValue("version", buildinfo.Version)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return err
	}
	printSuccess("Server stopped")
	return nil
}

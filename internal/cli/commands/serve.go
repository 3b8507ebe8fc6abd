package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/runlens/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the exploration API over HTTP",
		Long: `Start a local HTTP server exposing the exploration engine as a JSON API
for a dashboard front end.

Routes:
  GET  /healthz                 Liveness check
  GET  /api/filters             Filters and their values
  GET  /api/selection/default   Default selection
  POST /api/query               Apply a selection, get parameters and statistics
  POST /api/plot.png            Apply a selection, get the rendered plot`,
		Example: `  # Serve on the configured address (default 127.0.0.1:8765)
  runlens serve

  # Serve on all interfaces
  runlens serve --host 0.0.0.0 --port 9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}

	// Mapped to server.host and server.port by the config loader
	cmd.Flags().String("host", "", "Host to listen on (default: 127.0.0.1)")
	cmd.Flags().Int("port", 0, "Port to serve on (default: 8765)")

	return cmd
}

func runServe(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	addr := cmdCtx.Cfg.Server.Addr()
	srv := server.New(server.Config{
		Engine: cmdCtx.Engine,
		Addr:   addr,
		Logger: cmdCtx.Logger,
	})

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving runlens API on http://%s\n", addr)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx)
}

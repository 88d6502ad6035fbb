package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/parallx/semctx/internal/embedder"
	"github.com/parallx/semctx/internal/logging"
	"github.com/parallx/semctx/internal/server"
	"github.com/parallx/semctx/internal/store"
)

// NewServeCmd constructs the `semctx serve` command, which starts the HTTP
// server exposing the context pipeline and the technology matcher.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the semctx HTTP server",
		Long: `Start the semctx HTTP server.

The server exposes:
  POST /api/context          store one context embedding (gated)
  POST /api/context/search   nearest-context search (gated)
  POST /api/hints            offline technology hints (always available)
  GET  /api/ontology/{name}  ontology entry lookup
  GET  /api/health           liveness
  GET  /api/ready            readiness (dependency probes)
  GET  /metrics              Prometheus metrics

Examples:
  semctx serve
  semctx serve --port 9090
  VECTORS_ACTIVE=true semctx serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			deps, err := buildPipeline(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer deps.close()

			jnl, closeJournal := openJournal(log)
			defer closeJournal()

			// The store behind the pipeline also backs the readiness probe.
			pingers := []server.Pinger{store.NewPinger(deps.store)}

			srv, err := server.New(server.Deps{
				Ingestor: deps.pipeline,
				Searcher: deps.retrieval,
				Provider: deps.provider,
				Journal:  jnl,
			}, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: pingers,
				APIKey:  os.Getenv("SEMCTX_API_KEY"),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}

// Package commands defines all Cobra CLI commands for the semctx binary.
package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/parallx/semctx/internal/audit"
	"github.com/parallx/semctx/internal/config"
	"github.com/parallx/semctx/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "semctx",
		Short: "semctx — tenant-scoped semantic context over a vector store",
		Long: `semctx stores and retrieves semantic context for business entities.

Free text is embedded and written to a tenant-partitioned vector store, and
retrieved again by cosine similarity. All writes and reads sit behind an
explicit activation gate (VECTORS_ACTIVE=true); until it is set, the vector
pipeline refuses every call. The offline technology matcher (hints) works
without the gate and without any network access.

Configuration comes from env vars or a YAML config file (~/.semctx/config.yaml).
See 'semctx --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Load .env if present; real env vars always win.
			_ = godotenv.Load()

			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.semctx/config.yaml)")

	root.AddCommand(
		NewServeCmd(),
		NewIngestCmd(),
		NewQueryCmd(),
		NewHintsCmd(),
		NewOntologyCmd(),
		NewVersionCmd(),
	)

	return root
}

package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parallx/semctx/internal/embedder"
	"github.com/parallx/semctx/internal/logging"
	"github.com/parallx/semctx/internal/vector"
)

// NewQueryCmd constructs the `semctx query` command, which embeds a query
// text and prints the nearest context rows for a tenant.
func NewQueryCmd() *cobra.Command {
	var tenantID string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "query [text]",
		Short: "Find the nearest context rows for a tenant",
		Long: `Embed the query text and return the nearest stored context rows for the
tenant, ordered by ascending cosine distance.

Like ingest, the read path is gated on VECTORS_ACTIVE=true.

Examples:
  semctx query --tenant acme "customer mentioned a vmware migration"
  semctx query --tenant acme --limit 10 --json "backup strategy"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("query: %w", err)
			}

			deps, err := buildPipeline(ctx, log)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}
			defer deps.close()

			embedding, err := deps.provider.Embed(ctx, args[0])
			if err != nil {
				return fmt.Errorf("query: embed failed: %w", err)
			}

			results, err := deps.retrieval.FindSimilarContext(ctx, tenantID, embedding, limit)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stdout, "no context found")
				return nil
			}
			for i, res := range results {
				printResult(os.Stdout, i+1, res)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant ID to query (required)")
	cmd.Flags().IntVarP(&limit, "limit", "n", vector.DefaultQueryLimit, "Maximum number of results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	return cmd
}

// printResult writes one similarity result in human-readable form.
func printResult(w *os.File, rank int, res vector.SimilarityResult) {
	fmt.Fprintf(w, "%d. [%.4f] %s/%s (%s)\n", rank, res.Distance, res.ActorType, res.ActorRefID, res.SourceType)
	if len(res.SourceIDs) > 0 {
		fmt.Fprintf(w, "   sources: %v\n", res.SourceIDs)
	}
	if !res.CreatedAt.IsZero() {
		fmt.Fprintf(w, "   created: %s\n", res.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

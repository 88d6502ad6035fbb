package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parallx/semctx/internal/embedder"
	"github.com/parallx/semctx/internal/journal"
	"github.com/parallx/semctx/internal/logging"
	"github.com/parallx/semctx/internal/vector"
)

// NewIngestCmd constructs the `semctx ingest` command, which embeds one piece
// of context text and stores it in the vector store.
func NewIngestCmd() *cobra.Command {
	var tenantID string
	var actorType string
	var actorRefID string
	var sourceType string
	var sourceIDs []string
	var text string
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Embed context text and store it in the vector store",
		Long: `Embed one piece of normalized context text and write it as a single row
to the tenant-partitioned vector store.

The write path is gated: it refuses every call until VECTORS_ACTIVE=true is
set. Text is supplied via --text or piped to stdin with --stdin.

Required environment variables:
  VECTORS_ACTIVE       must be the literal string "true"
  OPENAI_API_KEY       or EMBEDDING_API_KEY for the embedding backend
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_COLLECTION    Collection name (default: context_embeddings)

Examples:
  semctx ingest --tenant acme --actor-type customer --actor-ref c-42 \
    --source-type transcript --source-id sig-1 --text "Alice: we run vmware"
  cat notes.txt | semctx ingest --tenant acme --actor-type customer \
    --actor-ref c-42 --source-type presentation --stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()

			if fromStdin {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("ingest: read stdin: %w", err)
				}
				text = strings.TrimSpace(string(raw))
			}

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			deps, err := buildPipeline(ctx, log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer deps.close()

			// A nil slice would fail validation; flags default to an empty list.
			if sourceIDs == nil {
				sourceIDs = []string{}
			}

			err = deps.pipeline.EmbedContext(ctx, vector.EmbedContextParams{
				TenantID:   tenantID,
				ActorType:  actorType,
				ActorRefID: actorRefID,
				SourceType: sourceType,
				SourceIDs:  sourceIDs,
				Text:       text,
			})
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			jnl, closeJournal := openJournal(log)
			defer closeJournal()
			if jerr := jnl.Append(ctx, journal.Entry{
				TenantID:    tenantID,
				ActorType:   actorType,
				ActorRefID:  actorRefID,
				SourceType:  sourceType,
				SourceCount:    len(sourceIDs),
				EmbeddingModel: deps.provider.Model(),
			}); jerr != nil {
				log.Warn("journal append failed", slog.Any("error", jerr))
			}

			log.Info("context stored",
				slog.String("tenant_id", tenantID),
				slog.String("source_type", sourceType),
				slog.Int("source_ids", len(sourceIDs)),
			)
			fmt.Fprintln(os.Stdout, "stored 1 context row")
			return nil
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant ID the row belongs to (required)")
	cmd.Flags().StringVar(&actorType, "actor-type", "", "Business entity type, e.g. customer (required)")
	cmd.Flags().StringVar(&actorRefID, "actor-ref", "", "Opaque reference to the owning entity (required)")
	cmd.Flags().StringVar(&sourceType, "source-type", "", "Adapter kind that produced the text (required)")
	cmd.Flags().StringArrayVar(&sourceIDs, "source-id", nil, "Originating signal ID (repeatable)")
	cmd.Flags().StringVarP(&text, "text", "t", "", "Normalized text to embed")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the text from stdin instead of --text")

	return cmd
}

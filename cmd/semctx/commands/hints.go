package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parallx/semctx/internal/ontology"
)

// NewHintsCmd constructs the `semctx hints` command, which runs the offline
// technology matcher over free-form text and prints the inferred hints.
func NewHintsCmd() *cobra.Command {
	var maxPerDomain int
	var asJSON bool
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "hints [text]",
		Short: "Infer technology hints from free-form text",
		Long: `Run the offline technology matcher over free-form text and print the
inferred ontology entries with confidence scores.

The matcher is fully deterministic and makes no network calls, so it works
without VECTORS_ACTIVE and without any embedding backend configured.

Examples:
  semctx hints "We beheren de klantomgeving met vmware en intune."
  cat transcript.txt | semctx hints --stdin --json
  semctx hints --max-per-domain 2 "azure, terraform, bicep"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			switch {
			case fromStdin:
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("hints: read stdin: %w", err)
				}
				text = strings.TrimSpace(string(raw))
			case len(args) == 1:
				text = args[0]
			default:
				return fmt.Errorf("hints: provide text as an argument or use --stdin")
			}

			hints := ontology.RetrieveHints(text, maxPerDomain)

			if asJSON {
				if hints == nil {
					hints = []ontology.TechHint{}
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(hints)
			}

			if len(hints) == 0 {
				fmt.Fprintln(os.Stdout, "no technologies inferred")
				return nil
			}
			for _, h := range hints {
				line := fmt.Sprintf("%.2f  %-24s %s", h.Confidence, h.CanonicalName, h.DomainBlock)
				if h.SubtechOf != "" {
					line += fmt.Sprintf("  (part of %s)", h.SubtechOf)
				}
				fmt.Fprintln(os.Stdout, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxPerDomain, "max-per-domain", 0, "Maximum hints per domain block (default 4)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print hints as JSON")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the text from stdin")

	return cmd
}

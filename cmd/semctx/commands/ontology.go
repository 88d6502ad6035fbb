package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parallx/semctx/internal/ontology"
)

// NewOntologyCmd constructs the `semctx ontology` command, which lists the
// controlled technology ontology or looks up a single entry.
func NewOntologyCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ontology [name]",
		Short: "List the technology ontology or look up one entry",
		Long: `Without arguments, list every entry of the compiled-in technology ontology.
With a name, print that entry. Lookup is case-insensitive on the canonical name.

Examples:
  semctx ontology
  semctx ontology terraform
  semctx ontology "active directory" --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				entry, ok := ontology.GetEntry(args[0])
				if !ok {
					return fmt.Errorf("ontology: no entry named %q", args[0])
				}
				if asJSON {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(entry)
				}
				printEntry(entry)
				return nil
			}

			entries := ontology.Entries()
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			for _, e := range entries {
				fmt.Fprintf(os.Stdout, "%-24s %s\n", e.CanonicalName, e.DomainBlock)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}

// printEntry writes one ontology entry in human-readable form.
func printEntry(e ontology.Entry) {
	fmt.Fprintf(os.Stdout, "%s\n", e.CanonicalName)
	fmt.Fprintf(os.Stdout, "  domain:   %s\n", e.DomainBlock)
	if e.SubtechOf != "" {
		fmt.Fprintf(os.Stdout, "  part of:  %s\n", e.SubtechOf)
	}
	fmt.Fprintf(os.Stdout, "  aliases:  %s\n", strings.Join(e.Aliases, ", "))
	if e.IsBaseline {
		fmt.Fprintln(os.Stdout, "  baseline: yes")
	}
	if e.IsRoot {
		fmt.Fprintln(os.Stdout, "  root:     yes")
	}
}

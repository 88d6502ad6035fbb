// Command semctx is the entry point for the semantic context service.
// It provides a CLI interface (via Cobra) and an HTTP server exposing the
// activation-gated embedding pipeline and the offline technology matcher.
package main

import (
	"fmt"
	"os"

	"github.com/parallx/semctx/cmd/semctx/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

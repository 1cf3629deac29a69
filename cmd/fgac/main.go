// Command fgac is the compiler and tooling entry point for the OpenFGA
// authorization DSL: compile .fga sources to OpenFGA authorization-model
// JSON, scaffold new projects, serve a compile API, and run a diagnostics
// language server.
package main

import (
	"os"

	"github.com/openfga-dslc/openfga-dslc/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main provides the apexengineer CLI.
//
// Usage:
//
//	apexengineer [flags] <command> [args]
//
// Commands:
//
//	run      - Run the voice race-engineer loop
//	ask      - Ask a one-shot text question with live race context
//	devices  - List audio devices
//	config   - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.apexengineer/
//	Use 'apexengineer config' commands to manage contexts.
package main

import (
	"fmt"
	"os"

	"github.com/apexlabs/apexengineer/cmd/apexengineer/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

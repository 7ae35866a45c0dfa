// Package cli provides common utilities for the apexengineer command-line
// tool.
//
// This package includes:
//   - Credential contexts (kubectl-style, stored under ~/.apexengineer)
//   - Output formatting (YAML, JSON, raw)
//   - Styled console transcript rendering
//
// Example usage:
//
//	cfg, err := cli.LoadConfig()
//	ctx, err := cfg.ResolveContext("")
//
//	console := cli.NewConsole(os.Stdout, cli.DefaultTheme)
//	console.Engineer("Box this lap, tires are done.")
package cli

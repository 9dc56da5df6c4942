// neurosym: neuro-symbolic rule engine MCP server
//
// Validates strategic analysis report parameters against a checklist,
// derives variables from them and evaluates sandboxed arithmetic formulas.
// Any MCP host (Claude Desktop, Cursor, VS Code Copilot, ...) drives it over
// stdio.
//
// Usage:
//
//	neurosym serve                      # Start MCP server (stdio transport)
//	neurosym eval '<expr>' [-v vars]    # Evaluate one expression
//	neurosym check report.yaml          # Validate a report file
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

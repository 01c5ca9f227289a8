// Command agileflow is the multi-agent workflow toolkit CLI: it keeps the
// story ledger and the assistant's native task list in sync, maintains the
// ideation history index, runs quality gates, and talks to the agent
// message bus.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Command planctl runs the weight planner from the terminal: projections,
// meal plans, recipe import, document indexing, questions and the MCP server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

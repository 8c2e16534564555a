// Package main is the entry point for the quarry SQL shell.
// It reads statements from the terminal and streams results back from a
// columnar query engine.
package main

import (
	"quarry/cli/cmd"
)

// main is the entry point for the quarry CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}

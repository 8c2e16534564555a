// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import "testing"

// Logging must be configured before any subcommand runs, or debug output
// from the engine adapters leaks through zerolog's default logger.
func TestLoggingSetupCoversSubcommands(t *testing.T) {
	if rootCmd.PersistentPreRun == nil {
		t.Fatal("rootCmd has no PersistentPreRun; logging is not configured for subcommands")
	}
	if rootCmd.PersistentFlags().Lookup("verbose") == nil {
		t.Error("verbose is not a persistent flag")
	}
	for _, sub := range rootCmd.Commands() {
		if sub.InheritedFlags().Lookup("verbose") == nil {
			t.Errorf("%s does not inherit the verbose flag", sub.Name())
		}
	}
}

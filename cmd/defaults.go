// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"quarry/cli/internal/config"
	"quarry/cli/internal/render"
)

// defaultsCmd persists presentation settings so every future session starts
// with them. Flags given to the root command still override the file.
var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Save the given flags as the default shell settings",
	Example: `  quarry defaults --format json --timing
  quarry defaults --null '(null)' --max-width 60`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("format") {
			if _, err := render.ParseFormat(flagFormat); err != nil {
				return err
			}
			cfg.Format = flagFormat
		}
		if cmd.Flags().Changed("timing") {
			cfg.Timing = flagTiming
		}
		if cmd.Flags().Changed("null") {
			cfg.Null = flagNull
		}
		if cmd.Flags().Changed("max-width") {
			cfg.MaxColWidth = flagMaxWidth
		}
		if cmd.Flags().Changed("lookahead") {
			cfg.Lookahead = flagLookahead
		}
		if cmd.Flags().Changed("batch-size") {
			cfg.BatchSize = flagBatchSize
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = flagWorkers
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		pterm.Success.Println("Defaults saved")
		return nil
	},
}

func init() {
	defaultsCmd.Flags().StringVar(&flagFormat, "format", string(render.FormatTable), "default output format: table, csv or json")
	defaultsCmd.Flags().BoolVar(&flagTiming, "timing", false, "print elapsed time after each statement")
	defaultsCmd.Flags().StringVar(&flagNull, "null", "", "marker shown for SQL NULL in tables")
	defaultsCmd.Flags().IntVar(&flagMaxWidth, "max-width", 0, "maximum table cell width")
	defaultsCmd.Flags().IntVar(&flagLookahead, "lookahead", 0, "rows buffered to size table columns")
	defaultsCmd.Flags().IntVar(&flagBatchSize, "batch-size", 0, "result batch size")
	defaultsCmd.Flags().IntVar(&flagWorkers, "workers", 0, "engine worker pool size")
	rootCmd.AddCommand(defaultsCmd)
}

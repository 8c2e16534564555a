// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the quarry SQL shell.
// The root command opens an engine session and runs the interactive loop;
// subcommands manage the saved connection and print version information.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"quarry/cli/internal/config"
	"quarry/cli/internal/dsn"
	"quarry/cli/internal/engine"
	"quarry/cli/internal/engine/grpcengine"
	"quarry/cli/internal/engine/pgengine"
	"quarry/cli/internal/logging"
	"quarry/cli/internal/render"
	"quarry/cli/internal/secrets"
	"quarry/cli/internal/shell"
	"quarry/cli/internal/terminal"
	"quarry/cli/internal/xdg"
)

var (
	flagDSN       string
	flagRemote    string
	flagInsecure  bool
	flagFormat    string
	flagTiming    bool
	flagNull      string
	flagMaxWidth  int
	flagLookahead int
	flagBatchSize int
	flagWorkers   int
	flagTimeout   time.Duration
	flagVerbose   bool
	showVersion   bool

	exitCode int
)

// rootCmd starts the interactive shell against a PostgreSQL database or a
// remote engine.
var rootCmd = &cobra.Command{
	Use:           "quarry",
	Short:         "Interactive SQL shell for columnar query engines",
	Long: `Quarry is an interactive SQL shell. Statements end with ';' and may span
multiple lines; results stream back as they are produced and can be rendered
as a table, CSV or line-delimited JSON.

The engine is selected at startup: --dsn (or a saved connection, see
'quarry connect') executes against PostgreSQL, --remote against a quarry
engine server over gRPC.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(flagVerbose)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("quarry %s\n", Version)
			return nil
		}

		// Persisted defaults fill the gaps; flags always win.
		if cfg, err := config.Load(); err == nil {
			if !cmd.Flags().Changed("format") && cfg.Format != "" {
				flagFormat = cfg.Format
			}
			if !cmd.Flags().Changed("timing") {
				flagTiming = cfg.Timing
			}
			if flagNull == "" {
				flagNull = cfg.Null
			}
			if flagMaxWidth == 0 {
				flagMaxWidth = cfg.MaxColWidth
			}
			if flagLookahead == 0 {
				flagLookahead = cfg.Lookahead
			}
			if flagBatchSize == 0 {
				flagBatchSize = cfg.BatchSize
			}
			if flagWorkers == 0 {
				flagWorkers = cfg.Workers
			}
		}

		format, err := render.ParseFormat(flagFormat)
		if err != nil {
			return err
		}

		sess, label, err := openSession(cmd.Context())
		if err != nil {
			pterm.Error.Println(logging.PresentError("could not start a session", err))
			if hint := logging.ConnectHint(err); hint != "" {
				pterm.Println("   " + hint)
			}
			return err
		}

		interactive := terminal.IsInteractive()
		var src shell.LineSource
		if interactive {
			printBanner(label)
			if rl, err := shell.NewReadlineSource(); err == nil {
				src = rl
			}
		}

		historyPath, err := xdg.HistoryPath()
		if err != nil {
			historyPath = ""
		}

		maxWidth := flagMaxWidth
		if maxWidth == 0 && interactive {
			// Keep a single cell from drowning the screen on narrow
			// terminals.
			if w := terminal.Width(0); w > 20 {
				maxWidth = w - 10
			}
		}

		exitCode = shell.Run(sess, shell.Options{
			Input:       src,
			Format:      format,
			Timing:      flagTiming,
			Null:        flagNull,
			MaxColWidth: maxWidth,
			Lookahead:   flagLookahead,
			Timeout:     flagTimeout,
			HistoryPath: historyPath,
			Interactive: interactive,
		})
		return nil
	},
}

// openSession builds the engine session from the startup flags: --remote
// wins, then --dsn, then the QUARRY_DSN/DATABASE_URL environment, then the
// keyring-saved connection.
func openSession(ctx context.Context) (engine.Session, string, error) {
	cfg := engine.Config{BatchSize: flagBatchSize, Workers: flagWorkers}

	if flagRemote != "" {
		sess, err := grpcengine.Open(ctx, flagRemote, cfg, grpcengine.Options{Insecure: flagInsecure})
		if err != nil {
			return nil, "", err
		}
		return sess, flagRemote, nil
	}

	rawDSN := strings.TrimSpace(flagDSN)
	if rawDSN == "" {
		rawDSN = strings.TrimSpace(os.Getenv("QUARRY_DSN"))
	}
	if rawDSN == "" {
		rawDSN = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if rawDSN == "" {
		if saved, err := secrets.LoadDSN(); err == nil {
			rawDSN = strings.TrimSpace(saved)
		}
	}
	if rawDSN == "" {
		return nil, "", fmt.Errorf("no database configured: pass --dsn, set QUARRY_DSN, or run 'quarry connect'")
	}

	normalized, err := dsn.Parse(rawDSN)
	if err != nil {
		return nil, "", err
	}
	sess, err := pgengine.Open(ctx, normalized, cfg)
	if err != nil {
		return nil, "", err
	}
	info, _ := dsn.ParseInfo(normalized)
	label := normalized
	if info != nil {
		label = info.Database + " @ " + info.Host
	}
	return sess, label, nil
}

func printBanner(label string) {
	pterm.Println()
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Connected:  ") +
		pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(label))
	pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint("  Type 'help' for shell commands, 'quit' to leave."))
	pterm.Println()
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func init() {
	rootCmd.Flags().StringVar(&flagDSN, "dsn", "", "PostgreSQL connection string")
	rootCmd.Flags().StringVar(&flagRemote, "remote", "", "address of a quarry engine server (gRPC)")
	rootCmd.Flags().BoolVar(&flagInsecure, "insecure", false, "disable TLS for --remote")
	rootCmd.Flags().StringVar(&flagFormat, "format", string(render.FormatTable), "initial output format: table, csv or json")
	rootCmd.Flags().BoolVar(&flagTiming, "timing", false, "print elapsed time after each statement")
	rootCmd.Flags().StringVar(&flagNull, "null", "", "marker shown for SQL NULL in tables")
	rootCmd.Flags().IntVar(&flagMaxWidth, "max-width", 0, "maximum table cell width (0 = auto)")
	rootCmd.Flags().IntVar(&flagLookahead, "lookahead", 0, "rows buffered to size table columns (0 = default)")
	rootCmd.Flags().IntVar(&flagBatchSize, "batch-size", 0, "result batch size (0 = engine default)")
	rootCmd.Flags().IntVar(&flagWorkers, "workers", 0, "engine worker pool size (0 = number of CPUs)")
	rootCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "per-statement ceiling; behaves like an interrupt (0 = none)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging on stderr")
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")
}

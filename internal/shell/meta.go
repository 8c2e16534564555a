// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package shell

import (
	"fmt"
	"strconv"
	"strings"

	"quarry/cli/internal/render"
	"quarry/cli/internal/terminal"
)

// CommandKind tags what the dispatcher made of a statement.
type CommandKind int

const (
	// CommandEmpty is whitespace-only input; nothing to do.
	CommandEmpty CommandKind = iota
	// CommandSQL is forwarded to the engine verbatim.
	CommandSQL
	// CommandMeta is a shell directive handled without an engine call.
	CommandMeta
)

// Command is the dispatcher's classification of one assembled statement.
type Command struct {
	Kind CommandKind
	// Name is the canonical meta-command name (aliases resolved).
	Name string
	// Args is the raw argument tail, split on whitespace.
	Args []string
	// Text is the original statement, kept for SQL forwarding and history.
	Text string
}

// metaNames maps every recognized meta token, including aliases, to its
// canonical name. Lookup is case-insensitive and tolerates a psql-style
// backslash prefix.
var metaNames = map[string]string{
	"help":      "help",
	"?":         "help",
	"h":         "help",
	"quit":      "quit",
	"exit":      "quit",
	"q":         "quit",
	"format":    "format",
	"f":         "format",
	"timing":    "timing",
	"nullvalue": "nullvalue",
	"maxwidth":  "maxwidth",
	"history":   "history",
	"clear":     "clear",
}

// Classify decides whether a statement is SQL, a meta-command, or empty.
// A leading recognized token after trimming classifies as meta; everything
// else is SQL and goes to the engine untouched.
func Classify(text string) Command {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Command{Kind: CommandEmpty}
	}
	fields := strings.Fields(trimmed)
	token := strings.ToLower(fields[0])
	slashed := strings.HasPrefix(token, "\\")
	token = strings.TrimPrefix(token, "\\")
	if name, ok := metaNames[token]; ok {
		return Command{Kind: CommandMeta, Name: name, Args: fields[1:], Text: trimmed}
	}
	if slashed {
		// Clearly meant as a shell command; surface the unknown name rather
		// than bothering the engine with it.
		return Command{Kind: CommandMeta, Name: token, Args: fields[1:], Text: trimmed}
	}
	return Command{Kind: CommandSQL, Text: trimmed}
}

// runMeta applies one meta-command to the session state. It returns true
// when the shell should terminate. Errors (unknown arguments and the like)
// are reported by the caller and never stop the loop.
func (s *Shell) runMeta(cmd Command) (quit bool, err error) {
	switch cmd.Name {
	case "quit":
		return true, nil
	case "help":
		return false, s.printHelp()
	case "format":
		if len(cmd.Args) != 1 {
			return false, fmt.Errorf("usage: format {table|csv|json}")
		}
		f, err := render.ParseFormat(strings.ToLower(cmd.Args[0]))
		if err != nil {
			return false, err
		}
		s.state.Format = f
	case "timing":
		on, err := parseOnOff(cmd.Args)
		if err != nil {
			return false, fmt.Errorf("usage: timing {on|off}")
		}
		s.state.Timing = on
	case "nullvalue":
		if len(cmd.Args) != 1 {
			return false, fmt.Errorf("usage: nullvalue <marker>")
		}
		s.state.Null = cmd.Args[0]
	case "maxwidth":
		if len(cmd.Args) != 1 {
			return false, fmt.Errorf("usage: maxwidth <columns>")
		}
		n, err := strconv.Atoi(cmd.Args[0])
		if err != nil || n < 1 {
			return false, fmt.Errorf("maxwidth wants a positive integer, got %q", cmd.Args[0])
		}
		s.state.MaxColWidth = n
	case "history":
		for _, stmt := range s.state.History {
			if _, err := fmt.Fprintln(s.out, strings.ReplaceAll(stmt, "\n", " ")); err != nil {
				return false, err
			}
		}
	case "clear":
		terminal.ClearScreen(s.out)
	default:
		return false, fmt.Errorf("unknown command %q; try help", cmd.Name)
	}
	return false, nil
}

func parseOnOff(args []string) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("expected on or off")
	}
	switch strings.ToLower(args[0]) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", args[0])
}

func (s *Shell) printHelp() error {
	help := `Statements end with ';' and may span multiple lines.
Shell commands (a leading backslash also works):
  help                  show this help
  quit | exit           leave the shell
  format {table|csv|json}  switch the output format
  timing {on|off}       print elapsed time after each statement
  nullvalue <marker>    marker shown for SQL NULL in tables
  maxwidth <columns>    truncate wider table cells with an ellipsis
  history               list the statements run this session
  clear                 clear the screen
`
	_, err := fmt.Fprint(s.out, help)
	return err
}

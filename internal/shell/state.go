// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package shell

import (
	"os"
	"strings"
	"time"

	"quarry/cli/internal/engine"
	"quarry/cli/internal/render"
)

// State is the mutable per-session state: output format, verbosity flags,
// statement history, and the one long-lived engine session handle. It is
// written only by the shell loop and the meta-command dispatcher, never by
// the bridge's workers, so no locking is involved.
type State struct {
	Session engine.Session

	Format      render.Format
	Timing      bool
	Null        string
	MaxColWidth int
	Lookahead   int
	Timeout     time.Duration

	History     []string
	historyPath string
}

// NewState wires the engine session with the initial presentation settings.
func NewState(sess engine.Session, format render.Format, historyPath string) *State {
	if format == "" {
		format = render.FormatTable
	}
	return &State{
		Session:     sess,
		Format:      format,
		historyPath: historyPath,
	}
}

// RenderOptions snapshots the presentation knobs for one statement. Format
// switches mid-session therefore never affect a statement already rendered.
func (st *State) RenderOptions() render.Options {
	return render.Options{
		Null:        st.Null,
		MaxColWidth: st.MaxColWidth,
		Lookahead:   st.Lookahead,
	}
}

// Remember appends a statement to the session history.
func (st *State) Remember(stmt string) {
	st.History = append(st.History, stmt)
}

// FlushHistory persists the session history, one statement per line with
// newlines flattened. Called once on Terminating; a write failure is not
// fatal to termination.
func (st *State) FlushHistory() error {
	if st.historyPath == "" || len(st.History) == 0 {
		return nil
	}
	var sb strings.Builder
	for _, stmt := range st.History {
		sb.WriteString(strings.ReplaceAll(stmt, "\n", " "))
		sb.WriteByte('\n')
	}
	f, err := os.OpenFile(st.historyPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(sb.String())
	return err
}

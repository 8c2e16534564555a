// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"quarry/cli/internal/bridge"
	"quarry/cli/internal/engine"
	"quarry/cli/internal/logging"
	"quarry/cli/internal/render"
)

const (
	promptMain = "quarry> "
	promptCont = "   ...> "
)

// Options configures one shell session.
type Options struct {
	// Input yields raw lines. Defaults to reading os.Stdin without echo.
	Input LineSource
	// Out receives all rendered output, notices and error lines. Defaults
	// to os.Stdout. A write failure on Out is fatal to the session.
	Out io.Writer
	// Format is the initial output format. Defaults to table.
	Format render.Format
	// Timing prints elapsed time after each statement.
	Timing bool
	// Null, MaxColWidth and Lookahead seed the table renderer knobs; zero
	// values pick the render package defaults.
	Null        string
	MaxColWidth int
	Lookahead   int
	// Timeout is an optional per-statement ceiling. It behaves exactly like
	// a user interrupt. Zero disables it.
	Timeout time.Duration
	// HistoryPath, when set, receives the statement history on exit.
	HistoryPath string
	// Interactive enables the execution spinner. Set it only when Out is a
	// terminal.
	Interactive bool
	// Interrupts delivers out-of-band interrupt signals during execution.
	// When nil and Interactive is set, Run subscribes to os.Interrupt.
	Interrupts <-chan os.Signal
}

// Shell drives one interactive session: read, assemble, dispatch, execute,
// render, loop. All methods run on the calling goroutine.
type Shell struct {
	state       *State
	src         LineSource
	out         io.Writer
	asm         Assembler
	interrupts  <-chan os.Signal
	interactive bool
}

// Run executes the session loop until quit, end of input, or loss of the
// output sink. It returns the process exit code: 0 on clean termination,
// 1 when output can no longer be delivered. The engine session is released
// before returning.
func Run(sess engine.Session, opts Options) int {
	src := opts.Input
	if src == nil {
		src = NewReaderSource(os.Stdin)
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	st := NewState(sess, opts.Format, opts.HistoryPath)
	st.Timing = opts.Timing
	st.Null = opts.Null
	st.MaxColWidth = opts.MaxColWidth
	st.Lookahead = opts.Lookahead
	st.Timeout = opts.Timeout

	interrupts := opts.Interrupts
	if interrupts == nil && opts.Interactive {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		defer signal.Stop(ch)
		interrupts = ch
	}

	s := &Shell{
		state:       st,
		src:         src,
		out:         out,
		interrupts:  interrupts,
		interactive: opts.Interactive,
	}
	code := s.loop()
	s.terminate()
	return code
}

// loop is the session state machine: AwaitingInput/Assembling until a full
// statement, then Dispatching and, for SQL, Executing/Rendering. Statement
// failures print one line and return to AwaitingInput; only sink loss ends
// the loop with a non-zero code.
func (s *Shell) loop() int {
	for {
		prompt := promptMain
		if s.asm.Pending() {
			prompt = promptCont
		}
		line, err := s.src.ReadLine(prompt)
		switch {
		case errors.Is(err, ErrInterrupted):
			s.asm.Reset()
			continue
		case errors.Is(err, io.EOF):
			return s.finishInput()
		case err != nil:
			log.Debug().Err(err).Msg("input source failed")
			if werr := s.report(fmt.Errorf("read input: %v", err)); werr != nil {
				return 1
			}
			return s.finishInput()
		}
		// A meta-command on its own line runs without a terminator, as in
		// psql. Only at a fresh prompt: inside a multi-line statement the
		// words are SQL text.
		if !s.asm.Pending() && !strings.Contains(line, ";") {
			if Classify(line).Kind == CommandMeta {
				quit, fatal := s.dispatch(line)
				if fatal != nil {
					fmt.Fprintln(os.Stderr, logging.PresentError("output sink lost", fatal))
					return 1
				}
				if quit {
					return 0
				}
				continue
			}
		}
		for _, stmt := range s.asm.Feed(line) {
			quit, fatal := s.dispatch(stmt)
			if fatal != nil {
				fmt.Fprintln(os.Stderr, logging.PresentError("output sink lost", fatal))
				return 1
			}
			if quit {
				return 0
			}
		}
	}
}

// finishInput handles end of input: a trailing unterminated buffer is an
// error, a trailing terminator-free statement is implicitly executed.
func (s *Shell) finishInput() int {
	stmt, err := s.asm.Flush()
	if err != nil {
		if werr := s.report(err); werr != nil {
			return 1
		}
		return 0
	}
	if stmt == "" {
		return 0
	}
	if _, fatal := s.dispatch(stmt); fatal != nil {
		fmt.Fprintln(os.Stderr, logging.PresentError("output sink lost", fatal))
		return 1
	}
	return 0
}

// dispatch classifies one assembled statement and runs it. The returned
// error is fatal (output sink loss); everything else has been reported.
func (s *Shell) dispatch(stmt string) (quit bool, fatal error) {
	cmd := Classify(stmt)
	switch cmd.Kind {
	case CommandEmpty:
		return false, nil
	case CommandMeta:
		quit, err := s.runMeta(cmd)
		if err != nil {
			return false, s.report(err)
		}
		return quit, nil
	default:
		s.state.Remember(cmd.Text)
		return false, s.execute(cmd.Text)
	}
}

// execute runs one SQL statement through the bridge, draining its event
// stream into the renderer while staying responsive to interrupts.
func (s *Shell) execute(sql string) error {
	exec := bridge.Submit(context.Background(), s.state.Session, sql, bridge.Options{
		Timeout: s.state.Timeout,
	})
	r := render.New(s.state.Format, s.out, s.state.RenderOptions())

	stopSpinner := func() {}
	if s.interactive {
		stopSpinner = startSpinner(s.out, "executing")
	}
	defer stopSpinner()

	var outcome *bridge.Outcome
	var sinkErr error
	events := exec.Events()
	for outcome == nil {
		select {
		case ev, ok := <-events:
			if !ok {
				// The worker always sends Done before closing; this is a
				// bridge bug, not an engine failure.
				outcome = &bridge.Outcome{Status: bridge.StatusError, Err: errors.New("execution ended without an outcome")}
				break
			}
			stopSpinner()
			switch ev.Type {
			case bridge.EventBatch:
				if sinkErr != nil {
					continue
				}
				if err := r.WriteBatch(ev.Batch); err != nil {
					sinkErr = err
					exec.Cancel()
				}
			case bridge.EventDone:
				outcome = ev.Outcome
			}
		case <-s.interrupts:
			exec.Cancel()
		}
	}
	stopSpinner()

	if sinkErr == nil {
		sinkErr = r.Close()
	}
	if sinkErr != nil {
		return sinkErr
	}
	return s.printOutcome(outcome)
}

// printOutcome writes the one-line statement summary. Engine errors and
// cancellations are reported here and the loop carries on.
func (s *Shell) printOutcome(outcome *bridge.Outcome) error {
	switch outcome.Status {
	case bridge.StatusCanceled:
		if s.state.Timing {
			_, err := fmt.Fprintf(s.out, "Query canceled after %s\n", outcome.Elapsed.Round(time.Millisecond))
			return err
		}
		_, err := fmt.Fprintln(s.out, "Query canceled")
		return err
	case bridge.StatusError:
		return s.report(outcome.Err)
	default:
		return render.Summary(s.out, outcome.Rows, outcome.Elapsed, s.state.Timing)
	}
}

// report prints a non-fatal error to the session output. The returned error
// is non-nil only when the sink itself failed.
func (s *Shell) report(err error) error {
	_, werr := fmt.Fprintf(s.out, "Error: %s\n", logging.Mask(err.Error()))
	return werr
}

// terminate flushes history and releases the engine session.
func (s *Shell) terminate() {
	if err := s.state.FlushHistory(); err != nil {
		log.Debug().Err(err).Msg("history flush failed")
	}
	if err := s.state.Session.Close(context.Background()); err != nil {
		log.Debug().Err(err).Msg("engine session close failed")
	}
	_ = s.src.Close()
}

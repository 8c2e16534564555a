// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package shell

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// ErrInterrupted is returned by a LineSource when the user interrupts at
// the prompt (Ctrl-C on an empty or partial line). The loop discards any
// pending buffer and keeps running.
var ErrInterrupted = errors.New("interrupted")

// LineSource yields raw input lines. io.EOF ends the session.
type LineSource interface {
	// ReadLine blocks for the next line. The prompt is advisory; piped
	// sources ignore it.
	ReadLine(prompt string) (string, error)
	Close() error
}

// readerSource reads from any io.Reader without echoing prompts. Used for
// piped input and in tests.
type readerSource struct {
	r *bufio.Reader
}

// NewReaderSource wraps r as a LineSource.
func NewReaderSource(r io.Reader) LineSource {
	return &readerSource{r: bufio.NewReader(r)}
}

func (rs *readerSource) ReadLine(string) (string, error) {
	line, err := rs.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			// Final line without a trailing newline still counts.
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (rs *readerSource) Close() error { return nil }

// readlineSource provides line editing and in-session recall on a TTY.
type readlineSource struct {
	rl *readline.Instance
}

// NewReadlineSource opens an interactive line editor on the terminal.
// In-editor recall (Up/Down) is per-session; the durable statement history
// is written separately by the shell on exit.
func NewReadlineSource() (LineSource, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "quarry> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return nil, err
	}
	return &readlineSource{rl: rl}, nil
}

func (rs *readlineSource) ReadLine(prompt string) (string, error) {
	rs.rl.SetPrompt(prompt)
	line, err := rs.rl.Readline()
	switch {
	case errors.Is(err, readline.ErrInterrupt):
		return "", ErrInterrupted
	case err != nil:
		return "", err
	}
	return line, nil
}

func (rs *readlineSource) Close() error { return rs.rl.Close() }

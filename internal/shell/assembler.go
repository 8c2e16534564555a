// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package shell implements the interactive session loop: it turns raw input
// lines into complete SQL statements, drives their execution through the
// bridge, and renders the streamed results. The loop is single-goroutine;
// only the bridge's worker runs concurrently with it.
package shell

import (
	"errors"
	"strings"
)

// ErrUnterminated is reported when input ends inside a quoted string or a
// block comment. It is distinct from an empty trailing buffer, which is not
// an error.
var ErrUnterminated = errors.New("unterminated quoted string or comment at end of input")

// scanState tracks where the statement scanner is relative to quoting and
// comments. The scanner is deliberately not a SQL parser: it only knows
// enough to find statement terminators that are really terminators.
type scanState int

const (
	scanNormal scanState = iota
	scanSingleQuote
	scanDoubleQuote
	scanLineComment
	scanBlockComment
)

// Assembler accumulates input lines into terminator-delimited statements.
// State carries across Feed calls so quotes and block comments may span any
// number of lines. The zero value is ready to use.
type Assembler struct {
	buf   strings.Builder
	state scanState
}

// Feed consumes one raw input line and returns the statements it completed,
// in order. A line may complete zero statements (continuation), one, or
// several ("select 1; select 2;"). Statements are returned with the
// terminator stripped and surrounding whitespace trimmed; whitespace-only
// statements are dropped rather than returned.
func (a *Assembler) Feed(line string) []string {
	var out []string
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch a.state {
		case scanNormal:
			switch {
			case c == ';':
				if stmt := strings.TrimSpace(a.buf.String()); stmt != "" {
					out = append(out, stmt)
				}
				a.buf.Reset()
				continue
			case c == '\'':
				a.state = scanSingleQuote
			case c == '"':
				a.state = scanDoubleQuote
			case c == '-' && i+1 < len(runes) && runes[i+1] == '-':
				a.state = scanLineComment
				a.buf.WriteRune('-')
				i++
			case c == '/' && i+1 < len(runes) && runes[i+1] == '*':
				a.state = scanBlockComment
				a.buf.WriteRune('/')
				i++
				c = '*'
			}
		case scanSingleQuote:
			if c == '\'' {
				// Doubled quote is an escaped quote, not a closer.
				if i+1 < len(runes) && runes[i+1] == '\'' {
					a.buf.WriteRune('\'')
					i++
				} else {
					a.state = scanNormal
				}
			}
		case scanDoubleQuote:
			if c == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					a.buf.WriteRune('"')
					i++
				} else {
					a.state = scanNormal
				}
			}
		case scanBlockComment:
			if c == '*' && i+1 < len(runes) && runes[i+1] == '/' {
				a.state = scanNormal
				a.buf.WriteRune('*')
				i++
				c = '/'
			}
		case scanLineComment:
			// Runs to end of line; closed below when the newline is added.
		}
		a.buf.WriteRune(c)
	}
	if a.state == scanLineComment {
		a.state = scanNormal
	}
	a.buf.WriteRune('\n')
	return out
}

// Flush ends the input stream. A non-empty buffer in Normal state is an
// implicit final statement. Ending inside a quote or block comment returns
// ErrUnterminated instead of silently truncating.
func (a *Assembler) Flush() (string, error) {
	if a.state != scanNormal {
		a.Reset()
		return "", ErrUnterminated
	}
	stmt := strings.TrimSpace(a.buf.String())
	a.buf.Reset()
	return stmt, nil
}

// Pending reports whether a partial statement is buffered, either visible
// text or an open quote/comment.
func (a *Assembler) Pending() bool {
	return a.state != scanNormal || strings.TrimSpace(a.buf.String()) != ""
}

// Reset discards any buffered input and returns to the Normal state. Used
// when the user interrupts at the prompt.
func (a *Assembler) Reset() {
	a.buf.Reset()
	a.state = scanNormal
}

// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package render turns engine result batches into formatted output. Each
// renderer consumes batches incrementally in the order the bridge delivers
// them, so unbounded result sets never require full buffering: the table
// format only holds a bounded look-ahead window while computing column
// widths.
package render

import (
	"fmt"
	"io"
	"time"

	"quarry/cli/internal/engine"
)

// Format selects the output shape for query results.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatTable, FormatCSV, FormatJSON:
		return Format(name), nil
	}
	return "", fmt.Errorf("unknown format %q (expected table, csv or json)", name)
}

// Options tunes rendering. The zero value picks the documented defaults.
type Options struct {
	// Null is the marker used for SQL NULL in the table format. CSV and JSON
	// use their native empty/null representations instead.
	Null string
	// MaxColWidth caps the display width of one table cell; wider values are
	// truncated with an ellipsis. Zero means DefaultMaxColWidth. CSV and JSON
	// always carry full values.
	MaxColWidth int
	// Lookahead is the number of rows buffered to compute table column
	// widths before streaming begins. Zero means DefaultLookahead. Rows
	// arriving after the window started streaming are clipped to the
	// computed widths.
	Lookahead int
}

const (
	DefaultNull        = "NULL"
	DefaultMaxColWidth = 100
	DefaultLookahead   = 1000
)

func (o Options) withDefaults() Options {
	if o.Null == "" {
		o.Null = DefaultNull
	}
	if o.MaxColWidth <= 0 {
		o.MaxColWidth = DefaultMaxColWidth
	}
	if o.Lookahead <= 0 {
		o.Lookahead = DefaultLookahead
	}
	return o
}

// Renderer consumes the batch stream of one execution. WriteBatch is called
// once per batch in delivery order; Close flushes anything still buffered.
// Renderers are single-use.
type Renderer interface {
	WriteBatch(b *engine.Batch) error
	Close() error
}

// New returns a renderer for the given format writing to w.
func New(format Format, w io.Writer, opts Options) Renderer {
	opts = opts.withDefaults()
	switch format {
	case FormatCSV:
		return newCSVRenderer(w)
	case FormatJSON:
		return newJSONRenderer(w)
	default:
		return newTableRenderer(w, opts)
	}
}

// Summary writes the one-line footer after a statement finishes: row count,
// optionally elapsed time. Errors are summarized by the shell instead.
func Summary(w io.Writer, rows int64, elapsed time.Duration, timing bool) error {
	noun := "rows"
	if rows == 1 {
		noun = "row"
	}
	if timing {
		_, err := fmt.Fprintf(w, "%d %s in %s\n", rows, noun, elapsed.Round(time.Millisecond))
		return err
	}
	_, err := fmt.Fprintf(w, "%d %s\n", rows, noun)
	return err
}

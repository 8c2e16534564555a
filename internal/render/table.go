// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"quarry/cli/internal/engine"
)

const ellipsis = "…"

// tableRenderer prints a boxed, psql-style table. Column widths are computed
// from a bounded look-ahead window of rows; once the window fills (or the
// stream ends) the table starts printing and later rows are clipped to the
// computed widths. An empty result set prints no box at all, the summary
// line carries the row count.
type tableRenderer struct {
	w         io.Writer
	opts      Options
	schema    engine.Schema
	window    [][]string
	widths    []int
	streaming bool
}

func newTableRenderer(w io.Writer, opts Options) *tableRenderer {
	return &tableRenderer{w: w, opts: opts}
}

func (t *tableRenderer) WriteBatch(b *engine.Batch) error {
	if t.schema == nil {
		t.schema = b.Schema
	}
	if len(t.schema) == 0 {
		return nil
	}
	for _, row := range b.Rows {
		cells := make([]string, len(t.schema))
		for i := range t.schema {
			var v engine.Value
			if i < len(row) {
				v = row[i]
			}
			cells[i] = formatValue(v, t.opts.Null)
		}
		if t.streaming {
			if err := t.writeRow(cells); err != nil {
				return err
			}
			continue
		}
		t.window = append(t.window, cells)
		if len(t.window) >= t.opts.Lookahead {
			if err := t.startStreaming(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *tableRenderer) Close() error {
	if !t.streaming {
		if len(t.window) == 0 {
			// Empty result: no box, the summary notice is enough.
			return nil
		}
		if err := t.startStreaming(); err != nil {
			return err
		}
	}
	return t.writeBorder()
}

// startStreaming fixes the column widths from the header and the buffered
// window, emits the header and the window, and switches to pass-through mode.
func (t *tableRenderer) startStreaming() error {
	t.widths = make([]int, len(t.schema))
	for i, col := range t.schema {
		t.widths[i] = clampWidth(runewidth.StringWidth(col.Name), t.opts.MaxColWidth)
	}
	for _, row := range t.window {
		for i, cell := range row {
			if w := clampWidth(runewidth.StringWidth(cell), t.opts.MaxColWidth); w > t.widths[i] {
				t.widths[i] = w
			}
		}
	}
	if err := t.writeBorder(); err != nil {
		return err
	}
	names := make([]string, len(t.schema))
	for i, col := range t.schema {
		names[i] = col.Name
	}
	if err := t.writeCells(names); err != nil {
		return err
	}
	if err := t.writeBorder(); err != nil {
		return err
	}
	t.streaming = true
	window := t.window
	t.window = nil
	for _, row := range window {
		if err := t.writeRow(row); err != nil {
			return err
		}
	}
	return nil
}

func (t *tableRenderer) writeRow(cells []string) error {
	return t.writeCells(cells)
}

func (t *tableRenderer) writeCells(cells []string) error {
	var sb strings.Builder
	sb.WriteByte('|')
	for i, cell := range cells {
		w := t.widths[i]
		if runewidth.StringWidth(cell) > w {
			cell = runewidth.Truncate(cell, w, ellipsis)
		}
		pad := w - runewidth.StringWidth(cell)
		sb.WriteByte(' ')
		sb.WriteString(cell)
		sb.WriteString(strings.Repeat(" ", pad))
		sb.WriteString(" |")
	}
	_, err := fmt.Fprintln(t.w, sb.String())
	return err
}

func (t *tableRenderer) writeBorder() error {
	var sb strings.Builder
	sb.WriteByte('+')
	for _, w := range t.widths {
		sb.WriteString(strings.Repeat("-", w+2))
		sb.WriteByte('+')
	}
	_, err := fmt.Fprintln(t.w, sb.String())
	return err
}

func clampWidth(w, max int) int {
	if w > max {
		return max
	}
	return w
}

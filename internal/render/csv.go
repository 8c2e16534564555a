// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package render

import (
	"encoding/csv"
	"io"

	"quarry/cli/internal/engine"
)

// csvRenderer streams RFC 4180 rows with a header line. Values are never
// truncated; NULL becomes an empty field.
type csvRenderer struct {
	w      *csv.Writer
	header bool
}

func newCSVRenderer(w io.Writer) *csvRenderer {
	return &csvRenderer{w: csv.NewWriter(w)}
}

func (c *csvRenderer) WriteBatch(b *engine.Batch) error {
	if !c.header && len(b.Schema) > 0 {
		names := make([]string, len(b.Schema))
		for i, col := range b.Schema {
			names[i] = col.Name
		}
		if err := c.w.Write(names); err != nil {
			return err
		}
		c.header = true
	}
	for _, row := range b.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = formatValue(v, "")
		}
		if err := c.w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func (c *csvRenderer) Close() error {
	c.w.Flush()
	return c.w.Error()
}

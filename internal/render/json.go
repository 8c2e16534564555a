// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package render

import (
	"bytes"
	"encoding/json"
	"io"

	"quarry/cli/internal/engine"
)

// jsonRenderer emits one JSON object per row, newline-delimited, with keys
// in schema order. NULL is a JSON null, so it stays distinguishable from an
// empty string. Values are carried in full.
type jsonRenderer struct {
	w io.Writer
}

func newJSONRenderer(w io.Writer) *jsonRenderer {
	return &jsonRenderer{w: w}
}

func (j *jsonRenderer) WriteBatch(b *engine.Batch) error {
	var buf bytes.Buffer
	for _, row := range b.Rows {
		buf.Reset()
		buf.WriteByte('{')
		for i, col := range b.Schema {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(col.Name)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			var v engine.Value
			if i < len(row) {
				v = row[i]
			}
			buf.Write(jsonValue(v))
		}
		buf.WriteString("}\n")
		if _, err := j.w.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func (j *jsonRenderer) Close() error { return nil }

func jsonValue(v engine.Value) []byte {
	switch x := v.(type) {
	case nil:
		return []byte("null")
	case []byte, [16]byte:
		// Hex/UUID text beats base64 for humans reading the stream.
		b, _ := json.Marshal(formatValue(x, ""))
		return b
	}
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(formatValue(v, ""))
	}
	return b
}

// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package render

import (
	"fmt"
	"strconv"
	"time"

	"quarry/cli/internal/engine"
)

// formatValue renders one cell as text. null is substituted for SQL NULL.
// Byte arrays follow the PostgreSQL conventions: 16-byte values print as
// UUIDs, anything else as \x-prefixed hex.
func formatValue(v engine.Value, null string) string {
	switch x := v.(type) {
	case nil:
		return null
	case string:
		return x
	case []byte:
		if len(x) == 16 {
			return uuidString(x)
		}
		return fmt.Sprintf("\\x%x", x)
	case [16]byte:
		return uuidString(x[:])
	case bool:
		return strconv.FormatBool(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

func uuidString(b []byte) string {
	return fmt.Sprintf("%02x%02x%02x%02x-%02x%02x-%02x%02x-%02x%02x-%02x%02x%02x%02x%02x%02x",
		b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7],
		b[8], b[9], b[10], b[11], b[12], b[13], b[14], b[15])
}

// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pgengine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"quarry/cli/internal/engine"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want engine.Kind
	}{
		{
			name: "nil passes through",
			err:  nil,
			want: "",
		},
		{
			name: "syntax error",
			err:  &pgconn.PgError{Code: "42601", Message: "syntax error at or near \"selec\""},
			want: engine.KindParse,
		},
		{
			name: "undefined table",
			err:  &pgconn.PgError{Code: "42P01", Message: "relation \"nope\" does not exist"},
			want: engine.KindPlan,
		},
		{
			name: "undefined column",
			err:  &pgconn.PgError{Code: "42703", Message: "column \"x\" does not exist"},
			want: engine.KindPlan,
		},
		{
			name: "unknown database",
			err:  &pgconn.PgError{Code: "3D000", Message: "database \"nope\" does not exist"},
			want: engine.KindPlan,
		},
		{
			name: "division by zero",
			err:  &pgconn.PgError{Code: "22012", Message: "division by zero"},
			want: engine.KindExecution,
		},
		{
			name: "connection failure",
			err:  &pgconn.PgError{Code: "08006", Message: "connection failure"},
			want: engine.KindInternal,
		},
		{
			name: "wrapped pg error",
			err:  fmt.Errorf("query: %w", &pgconn.PgError{Code: "42P01", Message: "no such table"}),
			want: engine.KindPlan,
		},
		{
			name: "context canceled",
			err:  context.Canceled,
			want: engine.KindCanceled,
		},
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: engine.KindCanceled,
		},
		{
			name: "transport failure",
			err:  errors.New("broken pipe"),
			want: engine.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Fatalf("mapError(nil) = %v, want nil", got)
				}
				return
			}
			if kind := engine.KindOf(got); kind != tt.want {
				t.Errorf("mapError(%v) kind = %v, want %v", tt.err, kind, tt.want)
			}
			if !errors.Is(got, tt.err) && !errors.As(got, new(*pgconn.PgError)) {
				t.Errorf("mapError(%v) lost the cause chain", tt.err)
			}
		})
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		oid  uint32
		want string
	}{
		{16, "bool"},
		{20, "int8"},
		{23, "int4"},
		{25, "text"},
		{701, "float8"},
		{1184, "timestamptz"},
		{2950, "uuid"},
		{3802, "jsonb"},
		{99999, "oid:99999"},
	}
	for _, tt := range tests {
		if got := typeName(tt.oid); got != tt.want {
			t.Errorf("typeName(%d) = %q, want %q", tt.oid, got, tt.want)
		}
	}
}

func TestSchemaOf(t *testing.T) {
	fds := []pgconn.FieldDescription{
		{Name: "id", DataTypeOID: 20},
		{Name: "name", DataTypeOID: 25},
	}
	schema := schemaOf(fds)
	want := engine.Schema{
		{Name: "id", Type: "int8"},
		{Name: "name", Type: "text"},
	}
	if len(schema) != len(want) {
		t.Fatalf("schemaOf() = %v, want %v", schema, want)
	}
	for i := range want {
		if schema[i] != want[i] {
			t.Errorf("schemaOf()[%d] = %v, want %v", i, schema[i], want[i])
		}
	}
}

// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package grpcengine

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"

	"quarry/cli/internal/engine"
)

func eventFields(t *testing.T, m map[string]any) map[string]any {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("structpb.NewStruct() error = %v", err)
	}
	return s.AsMap()
}

func TestDecodeBatch(t *testing.T) {
	fields := eventFields(t, map[string]any{
		"event": "batch",
		"columns": []any{
			map[string]any{"name": "id", "type": "int8"},
			map[string]any{"name": "name", "type": "text"},
		},
		"rows": []any{
			[]any{1, "ada"},
			[]any{nil, "grace"},
		},
	})

	batch, err := decodeBatch(fields)
	if err != nil {
		t.Fatalf("decodeBatch() error = %v", err)
	}
	if len(batch.Schema) != 2 || batch.Schema[0].Name != "id" || batch.Schema[1].Type != "text" {
		t.Errorf("schema = %v", batch.Schema)
	}
	if len(batch.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(batch.Rows))
	}
	// structpb carries numbers as float64 and null as nil.
	if got := batch.Rows[0][0]; got != float64(1) {
		t.Errorf("Rows[0][0] = %v (%T), want 1", got, got)
	}
	if batch.Rows[1][0] != nil {
		t.Errorf("Rows[1][0] = %v, want nil", batch.Rows[1][0])
	}
	if batch.Rows[1][1] != "grace" {
		t.Errorf("Rows[1][1] = %v, want grace", batch.Rows[1][1])
	}
}

func TestDecodeBatchEmpty(t *testing.T) {
	fields := eventFields(t, map[string]any{"event": "batch"})
	batch, err := decodeBatch(fields)
	if err != nil {
		t.Fatalf("decodeBatch() error = %v", err)
	}
	if len(batch.Schema) != 0 || len(batch.Rows) != 0 {
		t.Errorf("decodeBatch() = %+v, want empty batch", batch)
	}
}

func TestDecodeBatchMalformed(t *testing.T) {
	fields := eventFields(t, map[string]any{
		"event":   "batch",
		"columns": []any{"not a descriptor"},
	})
	if _, err := decodeBatch(fields); err == nil {
		t.Error("decodeBatch() expected an error for a malformed column")
	}
}

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name string
		kind string
		want engine.Kind
	}{
		{name: "parse kind preserved", kind: "parse_error", want: engine.KindParse},
		{name: "plan kind preserved", kind: "plan_error", want: engine.KindPlan},
		{name: "execution kind preserved", kind: "execution_error", want: engine.KindExecution},
		{name: "canceled kind preserved", kind: "canceled", want: engine.KindCanceled},
		{name: "unknown kind defaults to execution", kind: "exotic", want: engine.KindExecution},
		{name: "missing kind defaults to execution", kind: "", want: engine.KindExecution},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := eventFields(t, map[string]any{
				"event":   "error",
				"kind":    tt.kind,
				"message": "it broke",
			})
			err := decodeError(fields)
			if kind := engine.KindOf(err); kind != tt.want {
				t.Errorf("decodeError() kind = %v, want %v", kind, tt.want)
			}
		})
	}
}

func TestDecodeErrorEmptyMessage(t *testing.T) {
	err := decodeError(eventFields(t, map[string]any{"event": "error"}))
	if err == nil || err.Error() == "" {
		t.Errorf("decodeError() = %v, want a non-empty message", err)
	}
}

func TestMapTransportError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if kind := engine.KindOf(mapTransportError(ctx, errors.New("stream reset"))); kind != engine.KindCanceled {
		t.Errorf("cancelled ctx kind = %v, want canceled", kind)
	}
	if kind := engine.KindOf(mapTransportError(context.Background(), errors.New("stream reset"))); kind != engine.KindInternal {
		t.Errorf("live ctx kind = %v, want internal", kind)
	}
}

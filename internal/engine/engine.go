// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package engine defines the narrow interface between the shell and the
// query engine that actually parses, plans and executes SQL. The shell never
// looks inside a statement; it hands the full text to a Session and consumes
// the resulting batch stream. Concrete adapters live in the subpackages
// (pgengine, grpcengine, enginetest).
package engine

import "context"

// Config carries engine tuning knobs. The shell treats them as opaque and
// only threads them through to the adapter at session creation.
type Config struct {
	// BatchSize is the maximum number of rows per result batch.
	BatchSize int
	// MemLimit caps adapter-side buffering, in bytes. Zero means no limit.
	MemLimit int64
	// Workers sizes the adapter's execution pool. Zero means runtime default.
	Workers int
}

// DefaultBatchSize is used when Config.BatchSize is zero.
const DefaultBatchSize = 1024

// Column describes one column of a result schema.
type Column struct {
	Name string
	Type string
}

// Schema is the ordered column list shared by every batch of one execution.
type Schema []Column

// Value is a single cell. SQL NULL is represented as a nil Value.
type Value = any

// Batch is one chunk of columnar rows. The shell consumes batches in the
// order the engine produced them and never mutates their contents.
type Batch struct {
	Schema Schema
	Rows   [][]Value
}

// Session is a long-lived execution context. One session is created at
// startup and reused for every statement so that registered tables and views
// persist across commands. Sessions are not safe for concurrent Execute
// calls; the shell runs one statement at a time.
type Session interface {
	// Execute submits one statement for execution and returns a lazy cursor
	// over its result batches. Cancelling ctx cancels the execution
	// cooperatively.
	Execute(ctx context.Context, sql string) (Cursor, error)
	// Close releases the session and any resources held by the adapter.
	Close(ctx context.Context) error
}

// Cursor iterates the batch stream of one execution, pgx.Rows style:
//
//	for cur.Next(ctx) {
//	    b := cur.Batch()
//	    ...
//	}
//	if err := cur.Err(); err != nil { ... }
type Cursor interface {
	// Next advances to the next batch. It returns false when the stream is
	// exhausted or failed; Err distinguishes the two.
	Next(ctx context.Context) bool
	// Batch returns the current batch. Only valid after Next returned true,
	// and only until the following Next call.
	Batch() *Batch
	// Err returns the terminal error, if any, once Next returned false.
	Err() error
	// Close releases cursor resources. Safe to call more than once.
	Close()
}

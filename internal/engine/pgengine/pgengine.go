// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package pgengine adapts a PostgreSQL server to the engine interface over a
// pgx connection pool. Result rows are re-chunked into fixed-size batches
// so the shell sees the same stream shape from every engine, and SQLSTATE
// codes are folded into the engine error taxonomy.
package pgengine

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"quarry/cli/internal/engine"
)

// Session is a pgx-backed engine.Session. One pool is held for the process
// lifetime; temporary tables and session settings therefore persist across
// statements on the same connection pool.
type Session struct {
	pool      *pgxpool.Pool
	batchSize int
}

// Open connects to the database and verifies it is reachable. cfg.Workers
// caps the pool size; cfg.BatchSize controls result chunking.
func Open(ctx context.Context, dsn string, cfg engine.Config) (*Session, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, engine.Wrap(engine.KindInternal, "invalid connection string", err)
	}
	if cfg.Workers > 0 {
		pcfg.MaxConns = int32(cfg.Workers)
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, engine.Wrap(engine.KindInternal, "open connection pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, engine.Wrap(engine.KindInternal, "database unreachable", err)
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = engine.DefaultBatchSize
	}
	log.Debug().Int("batch_size", batchSize).Msg("postgres session opened")
	return &Session{pool: pool, batchSize: batchSize}, nil
}

// Execute implements engine.Session. The statement's context governs the
// server-side execution: cancelling it cancels the query on the backend.
func (s *Session) Execute(ctx context.Context, sql string) (engine.Cursor, error) {
	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, mapError(err)
	}
	return &cursor{
		rows:      rows,
		schema:    schemaOf(rows.FieldDescriptions()),
		batchSize: s.batchSize,
	}, nil
}

// Close implements engine.Session.
func (s *Session) Close(context.Context) error {
	s.pool.Close()
	return nil
}

type cursor struct {
	rows      pgx.Rows
	schema    engine.Schema
	batchSize int
	cur       *engine.Batch
	err       error
	done      bool
}

func (c *cursor) Next(context.Context) bool {
	if c.done {
		return false
	}
	batch := &engine.Batch{Schema: c.schema}
	for len(batch.Rows) < c.batchSize {
		if !c.rows.Next() {
			c.done = true
			c.err = mapError(c.rows.Err())
			break
		}
		vals, err := c.rows.Values()
		if err != nil {
			c.done = true
			c.err = mapError(err)
			break
		}
		batch.Rows = append(batch.Rows, vals)
	}
	if len(batch.Rows) == 0 {
		return false
	}
	c.cur = batch
	return true
}

func (c *cursor) Batch() *engine.Batch { return c.cur }
func (c *cursor) Err() error           { return c.err }
func (c *cursor) Close()               { c.rows.Close() }

func schemaOf(fds []pgconn.FieldDescription) engine.Schema {
	schema := make(engine.Schema, len(fds))
	for i, fd := range fds {
		schema[i] = engine.Column{
			Name: string(fd.Name),
			Type: typeName(fd.DataTypeOID),
		}
	}
	return schema
}

// typeName maps the common builtin type OIDs; everything else is reported
// by OID, which the shell only uses for display.
func typeName(oid uint32) string {
	switch oid {
	case 16:
		return "bool"
	case 20:
		return "int8"
	case 21:
		return "int2"
	case 23:
		return "int4"
	case 25:
		return "text"
	case 700:
		return "float4"
	case 701:
		return "float8"
	case 1043:
		return "varchar"
	case 1082:
		return "date"
	case 1114:
		return "timestamp"
	case 1184:
		return "timestamptz"
	case 1700:
		return "numeric"
	case 2950:
		return "uuid"
	case 3802:
		return "jsonb"
	default:
		return "oid:" + strconv.FormatUint(uint64(oid), 10)
	}
}

// mapError folds pgx failures into the engine taxonomy using the SQLSTATE
// class: 42xxx is syntax or resolution, everything else that the server
// reported is an execution failure, transport problems are internal.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return engine.Wrap(engine.KindCanceled, "execution cancelled", err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		kind := engine.KindExecution
		switch {
		case pgErr.Code == "42601":
			kind = engine.KindParse
		case strings.HasPrefix(pgErr.Code, "42"),
			strings.HasPrefix(pgErr.Code, "3D"),
			strings.HasPrefix(pgErr.Code, "3F"):
			kind = engine.KindPlan
		case strings.HasPrefix(pgErr.Code, "08"):
			kind = engine.KindInternal
		}
		return engine.Wrap(kind, pgErr.Message, err)
	}
	return engine.Wrap(engine.KindInternal, "engine failure", err)
}

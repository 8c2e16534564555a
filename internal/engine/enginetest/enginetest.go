// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package enginetest provides a scripted in-memory engine session for
// exercising the shell without a real engine: canned result sets, injected
// failures, and executions that block until cancelled.
package enginetest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"quarry/cli/internal/engine"
)

// Script describes how the session answers one statement.
type Script struct {
	// Batches are streamed in order before the terminal outcome.
	Batches []*engine.Batch
	// Err, when set, ends the stream with an error after Batches.
	Err error
	// Block makes the stream hang after Batches until the execution context
	// is cancelled. Used to test cancellation.
	Block bool
	// Delay is an optional pause before each batch.
	Delay time.Duration
}

// Session is a scripted engine.Session. Statements are matched on their
// whitespace-trimmed text; unscripted statements fail with a plan error so
// tests notice typos immediately.
type Session struct {
	mu       sync.Mutex
	scripts  map[string]Script
	executed []string
	closed   bool
}

// NewSession returns an empty scripted session.
func NewSession() *Session {
	return &Session{scripts: map[string]Script{}}
}

// Script registers the response for one statement.
func (s *Session) Script(sql string, sc Script) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[strings.TrimSpace(sql)] = sc
}

// Respond registers a single-batch success response.
func (s *Session) Respond(sql string, schema engine.Schema, rows ...[]engine.Value) {
	s.Script(sql, Script{Batches: []*engine.Batch{{Schema: schema, Rows: rows}}})
}

// Fail registers an error response.
func (s *Session) Fail(sql string, err error) {
	s.Script(sql, Script{Err: err})
}

// Executed returns the statements submitted so far, in order.
func (s *Session) Executed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.executed...)
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Execute implements engine.Session.
func (s *Session) Execute(ctx context.Context, sql string) (engine.Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, engine.New(engine.KindInternal, "session is closed")
	}
	key := strings.TrimSpace(sql)
	s.executed = append(s.executed, key)
	sc, ok := s.scripts[key]
	if !ok {
		return nil, engine.New(engine.KindPlan, fmt.Sprintf("no script for statement %q", key))
	}
	return &cursor{script: sc}, nil
}

// Close implements engine.Session.
func (s *Session) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type cursor struct {
	script Script
	pos    int
	cur    *engine.Batch
	err    error
}

func (c *cursor) Next(ctx context.Context) bool {
	if c.err != nil {
		return false
	}
	if ctx.Err() != nil {
		c.err = engine.Wrap(engine.KindCanceled, "execution cancelled", ctx.Err())
		return false
	}
	if c.pos < len(c.script.Batches) {
		if c.script.Delay > 0 {
			select {
			case <-time.After(c.script.Delay):
			case <-ctx.Done():
				c.err = engine.Wrap(engine.KindCanceled, "execution cancelled", ctx.Err())
				return false
			}
		}
		c.cur = c.script.Batches[c.pos]
		c.pos++
		return true
	}
	if c.script.Block {
		<-ctx.Done()
		c.err = engine.Wrap(engine.KindCanceled, "execution cancelled", ctx.Err())
		return false
	}
	c.err = c.script.Err
	return false
}

func (c *cursor) Batch() *engine.Batch { return c.cur }

func (c *cursor) Err() error { return c.err }

func (c *cursor) Close() {}

// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package bridge connects the synchronous shell loop to the asynchronous
// engine pipeline. Submit starts a worker goroutine that drains the engine
// cursor into a buffered event channel; the shell blocks on Events and sees
// a linear sequence of batches followed by exactly one terminal outcome.
// Cancellation is cooperative: Cancel (user interrupt) and the optional
// timeout ceiling both cancel the execution context, and the worker maps the
// interruption to a Canceled outcome before closing the channel, so no
// goroutine is ever left waiting.
package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"quarry/cli/internal/engine"
)

// EventType enumerates bridge event kinds.
type EventType string

const (
	// EventBatch carries one result batch, in engine production order.
	EventBatch EventType = "batch"
	// EventDone carries the terminal outcome. Always the last event.
	EventDone EventType = "done"
)

// Event is one element of an execution's event stream.
type Event struct {
	Type    EventType
	Batch   *engine.Batch
	Outcome *Outcome
}

// Status classifies how an execution finished.
type Status int

const (
	StatusOK Status = iota
	StatusError
	StatusCanceled
)

// Outcome is the terminal result of one statement.
type Outcome struct {
	Status  Status
	Rows    int64
	Elapsed time.Duration
	Err     error
}

// Options tunes one submission.
type Options struct {
	// Timeout is an optional ceiling on execution time. Zero disables it.
	// Hitting the ceiling behaves exactly like a user interrupt: the outcome
	// is Canceled, not Error.
	Timeout time.Duration
	// Buffer sizes the event channel. Zero means a small default.
	Buffer int
}

const defaultBuffer = 16

// Execution is one in-flight statement. The caller must drain Events until
// it is closed; exactly one EventDone is always delivered, whatever happens.
type Execution struct {
	events chan Event
	cancel context.CancelFunc
}

// Events returns the event stream. It is closed after the terminal event.
func (e *Execution) Events() <-chan Event { return e.events }

// Cancel requests cooperative cancellation of the execution. Safe to call
// multiple times and after completion.
func (e *Execution) Cancel() { e.cancel() }

// Submit hands one statement to the engine session and returns immediately.
// The worker goroutine owns the cursor for the lifetime of the execution and
// closes it before reporting the outcome.
func Submit(ctx context.Context, sess engine.Session, sql string, opts Options) *Execution {
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	var cancel context.CancelFunc
	if opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	e := &Execution{
		events: make(chan Event, buffer),
		cancel: cancel,
	}
	go e.run(ctx, sess, sql)
	return e
}

func (e *Execution) run(ctx context.Context, sess engine.Session, sql string) {
	defer close(e.events)
	defer e.cancel()

	start := time.Now()
	finish := func(rows int64, err error) {
		outcome := &Outcome{Rows: rows, Elapsed: time.Since(start)}
		switch {
		case isCancellation(ctx, err):
			outcome.Status = StatusCanceled
			outcome.Err = err
		case err != nil:
			outcome.Status = StatusError
			outcome.Err = err
		}
		e.events <- Event{Type: EventDone, Outcome: outcome}
	}

	cur, err := sess.Execute(ctx, sql)
	if err != nil {
		log.Debug().Err(err).Msg("statement submission failed")
		finish(0, err)
		return
	}
	defer cur.Close()

	var rows int64
	for cur.Next(ctx) {
		b := cur.Batch()
		rows += int64(len(b.Rows))
		select {
		case e.events <- Event{Type: EventBatch, Batch: b}:
		case <-ctx.Done():
			finish(rows, ctx.Err())
			return
		}
	}
	finish(rows, cur.Err())
}

// isCancellation reports whether the execution ended because its context was
// cancelled, either by the user or by the timeout ceiling.
func isCancellation(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return engine.KindOf(err) == engine.KindCanceled
}

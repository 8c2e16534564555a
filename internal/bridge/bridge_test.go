// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quarry/cli/internal/engine"
	"quarry/cli/internal/engine/enginetest"
)

func drain(t *testing.T, e *Execution) ([]*engine.Batch, *Outcome) {
	t.Helper()
	var batches []*engine.Batch
	var outcome *Outcome
	for ev := range e.Events() {
		switch ev.Type {
		case EventBatch:
			require.Nil(t, outcome, "batch delivered after the terminal outcome")
			batches = append(batches, ev.Batch)
		case EventDone:
			require.Nil(t, outcome, "more than one terminal outcome")
			outcome = ev.Outcome
		}
	}
	require.NotNil(t, outcome, "stream closed without a terminal outcome")
	return batches, outcome
}

func TestSubmitDeliversBatchesInOrder(t *testing.T) {
	sess := enginetest.NewSession()
	schema := engine.Schema{{Name: "n", Type: "int8"}}
	sess.Script("select n from t", enginetest.Script{Batches: []*engine.Batch{
		{Schema: schema, Rows: [][]engine.Value{{int64(1)}, {int64(2)}}},
		{Schema: schema, Rows: [][]engine.Value{{int64(3)}}},
	}})

	exec := Submit(context.Background(), sess, "select n from t", Options{})
	batches, outcome := drain(t, exec)

	require.Len(t, batches, 2)
	assert.Equal(t, int64(1), batches[0].Rows[0][0])
	assert.Equal(t, int64(3), batches[1].Rows[0][0])
	assert.Equal(t, StatusOK, outcome.Status)
	assert.Equal(t, int64(3), outcome.Rows)
	assert.NoError(t, outcome.Err)
}

func TestSubmitEngineError(t *testing.T) {
	sess := enginetest.NewSession()
	sess.Fail("select boom", engine.New(engine.KindExecution, "division by zero"))

	exec := Submit(context.Background(), sess, "select boom", Options{})
	batches, outcome := drain(t, exec)

	assert.Empty(t, batches)
	assert.Equal(t, StatusError, outcome.Status)
	assert.Equal(t, engine.KindExecution, engine.KindOf(outcome.Err))
}

func TestSubmitSubmissionFailure(t *testing.T) {
	sess := enginetest.NewSession()
	// Unscripted statements fail at Execute, before any cursor exists.
	exec := Submit(context.Background(), sess, "select unscripted", Options{})
	_, outcome := drain(t, exec)

	assert.Equal(t, StatusError, outcome.Status)
	assert.Error(t, outcome.Err)
}

func TestCancelYieldsCanceledOutcome(t *testing.T) {
	sess := enginetest.NewSession()
	schema := engine.Schema{{Name: "n", Type: "int8"}}
	sess.Script("select forever", enginetest.Script{
		Batches: []*engine.Batch{{Schema: schema, Rows: [][]engine.Value{{int64(1)}}}},
		Block:   true,
	})

	exec := Submit(context.Background(), sess, "select forever", Options{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		exec.Cancel()
	}()
	_, outcome := drain(t, exec)

	assert.Equal(t, StatusCanceled, outcome.Status, "cancel must never look like success")
	assert.Error(t, outcome.Err)
}

func TestCancelIsIdempotent(t *testing.T) {
	sess := enginetest.NewSession()
	sess.Script("select forever", enginetest.Script{Block: true})

	exec := Submit(context.Background(), sess, "select forever", Options{})
	exec.Cancel()
	exec.Cancel()
	_, outcome := drain(t, exec)
	exec.Cancel()

	assert.Equal(t, StatusCanceled, outcome.Status)
}

func TestTimeoutBehavesLikeCancel(t *testing.T) {
	sess := enginetest.NewSession()
	sess.Script("select slow", enginetest.Script{Block: true})

	exec := Submit(context.Background(), sess, "select slow", Options{Timeout: 20 * time.Millisecond})
	_, outcome := drain(t, exec)

	assert.Equal(t, StatusCanceled, outcome.Status, "hitting the ceiling is a cancellation, not an error")
}

func TestSlowConsumerStillGetsOutcomeAfterCancel(t *testing.T) {
	sess := enginetest.NewSession()
	schema := engine.Schema{{Name: "n", Type: "int8"}}
	batches := make([]*engine.Batch, 8)
	for i := range batches {
		batches[i] = &engine.Batch{Schema: schema, Rows: [][]engine.Value{{int64(i)}}}
	}
	sess.Script("select many", enginetest.Script{Batches: batches, Block: true})

	// Buffer of one forces the worker to park on the event channel; Cancel
	// must still unblock it and the terminal outcome must still arrive.
	exec := Submit(context.Background(), sess, "select many", Options{Buffer: 1})
	time.Sleep(10 * time.Millisecond)
	exec.Cancel()

	_, outcome := drain(t, exec)
	assert.Equal(t, StatusCanceled, outcome.Status)
}

// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package engine

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category reported by an engine adapter.
type Kind string

const (
	// KindParse indicates the engine rejected the statement syntax.
	KindParse Kind = "parse_error"
	// KindPlan indicates planning failed (unknown table, type mismatch, ...).
	KindPlan Kind = "plan_error"
	// KindExecution indicates a runtime failure while producing results.
	KindExecution Kind = "execution_error"
	// KindInternal indicates an adapter or transport failure.
	KindInternal Kind = "internal_error"
	// KindCanceled indicates the execution was cancelled cooperatively.
	KindCanceled Kind = "canceled"
)

// Error wraps an engine failure with kind and human-friendly message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *Error { return &Error{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *Error             { return &Error{Kind: kind, Message: msg} }

// KindOf extracts the error kind, defaulting to KindInternal for errors that
// did not come from an adapter.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"context"
	"errors"
	"fmt"
)

// Configuration errors, returned before any case runs.
var (
	ErrInvalidTask        = errors.New("invalid task")
	ErrInvalidParallelism = errors.New("invalid parallelism")
	ErrInvalidCases       = errors.New("invalid cases")
)

// Task produces an output for a case input.
type Task interface {
	Run(ctx context.Context, input any) (any, error)
}

// TaskFunc adapts a function to a Task.
type TaskFunc func(ctx context.Context, input any) (any, error)

// Run implements Task.
func (f TaskFunc) Run(ctx context.Context, input any) (any, error) {
	return f(ctx, input)
}

// NewTask resolves fn into a Task. Accepted shapes are Task, TaskFunc,
// func(context.Context, any) (any, error), func(any) (any, error) and
// func(any) any.
func NewTask(fn any) (Task, error) {
	switch f := fn.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrInvalidTask)
	case TaskFunc:
		if f == nil {
			return nil, fmt.Errorf("%w: nil function", ErrInvalidTask)
		}
		return f, nil
	case Task:
		return f, nil
	case func(context.Context, any) (any, error):
		if f == nil {
			return nil, fmt.Errorf("%w: nil function", ErrInvalidTask)
		}
		return TaskFunc(f), nil
	case func(any) (any, error):
		if f == nil {
			return nil, fmt.Errorf("%w: nil function", ErrInvalidTask)
		}
		return TaskFunc(func(_ context.Context, input any) (any, error) {
			return f(input)
		}), nil
	case func(any) any:
		if f == nil {
			return nil, fmt.Errorf("%w: nil function", ErrInvalidTask)
		}
		return TaskFunc(func(_ context.Context, input any) (any, error) {
			return f(input), nil
		}), nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidTask, fn)
	}
}

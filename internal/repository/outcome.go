package repository

import (
	"context"
	"errors"
)

// Kind tags an Outcome.
type Kind int

const (
	// KindLoading means the request is in flight. It is never terminal.
	KindLoading Kind = iota
	// KindSuccess carries a payload.
	KindSuccess
	// KindError carries the failure.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is one item of a repository stream.
type Outcome[T any] struct {
	Data T
	Err  error
	Kind Kind
}

// Loading returns an in-flight outcome.
func Loading[T any]() Outcome[T] {
	return Outcome[T]{Kind: KindLoading}
}

// Success wraps a payload.
func Success[T any](data T) Outcome[T] {
	return Outcome[T]{Kind: KindSuccess, Data: data}
}

// Failure wraps an error.
func Failure[T any](err error) Outcome[T] {
	return Outcome[T]{Kind: KindError, Err: err}
}

// IsTerminal reports whether the outcome ends a one-shot request.
func (o Outcome[T]) IsTerminal() bool {
	return o.Kind == KindSuccess || o.Kind == KindError
}

// ErrNoOutcome is returned by Await when a stream closes without a terminal outcome.
var ErrNoOutcome = errors.New("stream closed without a result")

// Await drains a one-shot stream and returns its terminal outcome as a value and error.
func Await[T any](ctx context.Context, stream <-chan Outcome[T]) (T, error) {
	var zero T
	for {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case outcome, ok := <-stream:
			if !ok {
				return zero, ErrNoOutcome
			}
			switch outcome.Kind {
			case KindSuccess:
				return outcome.Data, nil
			case KindError:
				return zero, outcome.Err
			}
		}
	}
}

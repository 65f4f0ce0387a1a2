package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/famledger/internal/common"
)

// Result is the outcome of a mutating use case.
type Result[T any] struct {
	Success bool
	Message string
	Err     error
	Data    T
}

// None is the Data of results that carry nothing back.
type None struct{}

func succeed[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// failure reports a rule violation of the given kind (a common sentinel).
func failure[T any](kind error, format string, args ...any) Result[T] {
	msg := fmt.Sprintf(format, args...)
	return Result[T]{Message: msg, Err: fmt.Errorf("%s: %w", msg, kind)}
}

// failed reports an error coming from the repositories.
func failed[T any](err error) Result[T] {
	var msg string
	switch {
	case errors.Is(err, common.ErrorNotReady):
		msg = "data is still loading, try again shortly"
	case errors.Is(err, common.ErrorInvalidInput):
		msg = err.Error()
	case errors.Is(err, common.ErrorMalformedRecord):
		msg = "stored data is corrupted"
	default:
		msg = "storage error"
	}
	return Result[T]{Message: msg, Err: err}
}

// invalid reports a record that failed validation before any mutation.
func invalid[T any](err error) Result[T] {
	return Result[T]{Message: err.Error(), Err: fmt.Errorf("%w: %w", common.ErrorInvalidInput, err)}
}

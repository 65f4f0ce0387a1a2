// Package models defines the bookkeeping entities, their factories and the
// rules a stored record has to satisfy to be accepted back from storage.
package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidEntity is wrapped by every Validate failure.
var ErrInvalidEntity = errors.New("invalid entity")

// Entity is implemented by every persisted record.
type Entity interface {
	// EntityID returns the caller-generated, immutable identity.
	EntityID() string

	// RequiredFields lists JSON keys that must be present (and not null)
	// in a stored record.
	RequiredFields() []string

	// Validate checks field-level rules after decoding.
	Validate() error
}

// now is a test seam for timestamps stamped by the factories.
var now = func() time.Time { return time.Now().UTC() }

func newID() string {
	return uuid.New().String()
}

func invalid(entity, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidEntity, entity, fmt.Sprintf(format, args...))
}

func requireID(entity, field, value string) error {
	if value == "" {
		return invalid(entity, "%s is required", field)
	}
	return nil
}

func requireTime(entity, field string, value time.Time) error {
	if value.IsZero() {
		return invalid(entity, "%s is required", field)
	}
	return nil
}

func checkDueDay(entity string, day *int) error {
	if day != nil && (*day < 1 || *day > 31) {
		return invalid(entity, "dueDateDay %d out of range 1..31", *day)
	}
	return nil
}

// firstError returns the first non-nil error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

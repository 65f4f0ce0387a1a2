// Package common defines shared constants and sentinel errors used across
// the storage, service and transport layers of famledger. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound        = errors.New("not found")
	ErrorMalformedRecord = errors.New("malformed record")

	// ErrorNotReady is returned by remote-backed repositories (and sessions)
	// until the initial bulk load has completed.
	ErrorNotReady = errors.New("repository not ready")
	ErrorClosed   = errors.New("closed")

	// Use-case errors.
	ErrorReferentialIntegrity = errors.New("referential integrity violation")
	ErrorInvalidInput         = errors.New("invalid input")

	// Auth errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorInvalidToken = errors.New("invalid token")
	ErrorTokenExpired = errors.New("token expired")
)

// Package common defines shared constants and sentinel errors used across
// the wlog transports, storage and command-line layers. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Codec errors.
	ErrMalformedEntry = errors.New("malformed entry")

	// Transport errors.
	ErrBrokenConnection = errors.New("broken connection")
	ErrUnauthorized     = errors.New("unauthorized")

	// Startup errors, fatal to the process.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrBindFailure      = errors.New("bind failure")
)

// Package common defines shared sentinel errors used across the MotionBoard
// storage, engine and archive layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrStorageUnavailable marks failures of the durable store itself
	// (quota exceeded, driver unsupported, corrupted database).
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Archive errors.
	ErrMalformedArchive   = errors.New("malformed archive")
	ErrUnsupportedVersion = errors.New("unsupported archive version")

	// Engine errors.
	ErrNoActiveBoard = errors.New("no active board")
	ErrInvalidItem   = errors.New("invalid item")
)

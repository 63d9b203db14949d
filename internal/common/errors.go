// Package common defines shared constants and sentinel errors used across
// client and server layers of babylog. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrStorage     = errors.New("storage failure")
	ErrCorruptData = errors.New("corrupt stored data")
	ErrNotFound    = errors.New("not found")

	// Validation errors.
	ErrInvalidEntry      = errors.New("invalid entry")
	ErrInvalidProfile    = errors.New("invalid profile")
	ErrInvalidWeight     = errors.New("invalid weight")
	ErrInvalidPassphrase = errors.New("invalid passphrase")
	ErrInvalidBackup     = errors.New("invalid backup")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidTimer      = errors.New("invalid timer request")
	ErrLastProfile       = errors.New("cannot delete the last profile")

	// Sync errors.
	ErrSyncDisabled = errors.New("sync is not enabled")
	ErrNoProfile    = errors.New("no active profile")

	// Service-level errors on the sync server.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrEntryConflict  = errors.New("entry id belongs to another profile")
)

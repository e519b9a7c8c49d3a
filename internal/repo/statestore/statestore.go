// Package statestore keeps short-lived per-user conversation state. Entries
// expire a fixed TTL after their last write; expired entries read as absent.
package statestore

import "errors"

var (
	ErrExists   = errors.New("state already exists")
	ErrNotFound = errors.New("state not found")
)

// Package store holds the recipient and volunteer pools an allocation run
// reads from and mutates. Stores are plain objects owned by the caller; there
// is no process-wide state.
package store

import "errors"

var (
	// ErrNotFound is returned when an id is not present in a store.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientCapacity is returned when consuming more units than a
	// recipient can still absorb.
	ErrInsufficientCapacity = errors.New("insufficient capacity")
)

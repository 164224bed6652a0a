package allocation

import "errors"

var (
	// ErrInvalidArgument is returned before any store mutation when the batch
	// or the stores cannot be allocated (negative quantity, negative capacity,
	// nil inputs).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStoreChanged is returned when a store no longer matches the snapshot
	// taken at the start of a run, which means it was mutated concurrently.
	ErrStoreChanged = errors.New("store changed during allocation")
)

package set

import "errors"

var (
	// ErrAllocationFailure is returned when the set's allocator cannot hand out storage.
	ErrAllocationFailure = errors.New("set: allocation failure")

	ErrDestroyed = errors.New("set: used after Destroy")
)

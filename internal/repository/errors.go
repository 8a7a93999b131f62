package repository

import "errors"

// Store outcome errors. All of these are business outcomes, not faults:
// they propagate to the caller unchanged and are never retried. Only
// ErrStoreUnavailable marks a transient backing-store failure.
var (
	ErrNotFound             = errors.New("record not found")
	ErrAlreadyProcessed     = errors.New("request already processed")
	ErrInsufficientQuantity = errors.New("insufficient asset quantity")
	ErrCapacityExceeded     = errors.New("employee limit reached")
	ErrAlreadyAffiliated    = errors.New("employee affiliated with another company")
	ErrStoreUnavailable     = errors.New("store unavailable")
)

// maxCASRetries bounds the optimistic-lock retry loops. A conflict past
// this many attempts surfaces as ErrStoreUnavailable.
const maxCASRetries = 3

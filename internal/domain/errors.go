package domain

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")

	// ErrVendorAPI marks a failed call to the vendor API. Every such failure is
	// treated as transient and consumes the retry budget.
	ErrVendorAPI = errors.New("pms api error")

	ErrNoDriver           = errors.New("no pms driver registered")
	ErrUnresolvedConflict = errors.New("guest phone conflict unresolved")
)

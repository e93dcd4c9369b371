package entity

import "errors"

var (
	// ErrInvalidTransition is returned when a requested state transition is
	// not present in the transition table. Callers surface it as a rejected
	// request, never a retry.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrStatusConflict is returned when a guarded update matched zero rows,
	// meaning another worker moved the record first.
	ErrStatusConflict = errors.New("status changed concurrently")

	// ErrRejectionReasonRequired is returned by Reject when no reason is given.
	ErrRejectionReasonRequired = errors.New("rejection reason is required")
)

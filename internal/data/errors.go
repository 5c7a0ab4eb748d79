package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrListingNotFound is returned when a listing is absent or closed.
	ErrListingNotFound = errors.New("listing not found")
	// ErrSellerNotFound is returned when a seller is absent.
	ErrSellerNotFound = errors.New("seller not found")
	// ErrTaskNotFound is returned when a moderation task does not exist.
	ErrTaskNotFound = errors.New("moderation task not found")
	// ErrTaskNotPending is returned when resolving a task that already
	// reached a terminal state.
	ErrTaskNotPending = errors.New("moderation task is not pending")
)

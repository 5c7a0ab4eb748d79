package core

import "errors"

// Sentinel errors for the service layer. Store-level not-found conditions live
// in internal/data; these cover collaborator availability, which the HTTP edge
// maps to 503.
var (
	// ErrUnavailable is returned when a required collaborator (store,
	// transport, scorer) is not wired at request time. Never retried by the
	// core itself.
	ErrUnavailable = errors.New("required collaborator unavailable")
)

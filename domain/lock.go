package domain

import "context"

// InFlightLock serializes toggle requests per button id
type InFlightLock interface {
	// Acquire takes the lock for the id.
	// Returns ErrInFlight if someone else holds it.
	// The returned release func must be called exactly once.
	Acquire(ctx context.Context, id string) (release func(), err error)
}

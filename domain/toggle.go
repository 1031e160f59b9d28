package domain

import "context"

const (
	// DefaultTogglePath 与服务端路由保持一致
	DefaultTogglePath = "/messages/{id}/like"
	// TogglePathParam is the placeholder replaced by the button id
	TogglePathParam = "id"
)

// ToggleResponse is the server's answer to a toggle request
type ToggleResponse struct {
	Liked bool
}

// ToggleOutcome is the result of one click: success with the new state,
// or failure with the reason and the state the button was reverted to.
type ToggleOutcome struct {
	ButtonID  string
	Liked     bool  // New state on success, prior state on failure
	Err       error // nil on success, ctx.Err() when the caller stopped waiting
	Coalesced bool  // The outcome answered more than one concurrent click
}

// Succeeded reports whether the server confirmed a new state
func (o ToggleOutcome) Succeeded() bool {
	return o.Err == nil
}

// ToggleClient issues the toggle request for one button id
type ToggleClient interface {
	// Toggle flips the like state of the item on the server.
	// Returns ErrTransport, ErrUnexpectedStatus or ErrMalformedResponse on failure.
	Toggle(ctx context.Context, id string) (ToggleResponse, error)
}

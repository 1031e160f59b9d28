package domain

import "errors"

var (
	// ErrNotFound will throw if no button is bound for the requested id
	ErrNotFound = errors.New("your requested button is not bound")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("given Param is not valid")
	// ErrInFlight will throw if a toggle for the same button is already running elsewhere
	ErrInFlight = errors.New("toggle already in flight")
	// ErrTransport will throw if the toggle request never got a response
	ErrTransport = errors.New("toggle request failed")
	// ErrUnexpectedStatus will throw if the server answered with a non-2xx status
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrMalformedResponse will throw if the response is not a {"liked": bool} document
	ErrMalformedResponse = errors.New("malformed toggle response")
)

package domain

import "context"

// ClickEvent is a click delivered by the page
type ClickEvent struct {
	ButtonID string
}

type ClickWorker interface {
	Start(ctx context.Context)

	// Send queues a click. It never blocks; the click is dropped when the queue is full.
	Send(event ClickEvent) bool
}

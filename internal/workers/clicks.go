package workers

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/Go-Like-Toggle/domain"
)

const DefaultQueueSize = 1024

type clickWorker struct {
	Toggle    domain.ToggleUsecase
	OnOutcome func(domain.ToggleOutcome)
	ch        chan domain.ClickEvent
}

var _ domain.ClickWorker = (*clickWorker)(nil)

// NewClickWorker creates the click event loop. onOutcome may be nil.
func NewClickWorker(toggle domain.ToggleUsecase, queueSize int, onOutcome func(domain.ToggleOutcome)) *clickWorker {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &clickWorker{
		Toggle:    toggle,
		OnOutcome: onOutcome,
		ch:        make(chan domain.ClickEvent, queueSize),
	}
}

// Send queues a click without blocking the caller
func (w *clickWorker) Send(event domain.ClickEvent) bool {
	select {
	case w.ch <- event:
		return true
	default:
		logrus.Warnf("ClickWorker's channel is full, click on %s dropped", event.ButtonID)
		return false
	}
}

// Start runs the loop until ctx is done.
// Each click runs on its own goroutine: a slow request must not hold back clicks on other buttons.
func (w *clickWorker) Start(ctx context.Context) {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case event := <-w.ch:
			wg.Add(1)
			go func(event domain.ClickEvent) {
				defer wg.Done()
				outcome := w.Toggle.Click(ctx, event.ButtonID)
				if w.OnOutcome != nil {
					w.OnOutcome(outcome)
				}
			}(event)
		case <-ctx.Done():
			logrus.Info("shuting down ClickWorker, waiting for in-flight clicks...")
			return
		}
	}
}

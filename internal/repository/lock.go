package repository

import (
	"context"
	"sync"

	"github.com/Guyuepp/Go-Like-Toggle/domain"
)

// localLock is the in-process InFlightLock
type localLock struct {
	mu       sync.Mutex
	inFlight map[string]bool // 正在请求中的按钮ID
}

var _ domain.InFlightLock = (*localLock)(nil)

// NewLocalLock creates a lock that only serializes toggles inside this process
func NewLocalLock() *localLock {
	return &localLock{
		inFlight: make(map[string]bool),
	}
}

func (l *localLock) Acquire(_ context.Context, id string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.inFlight[id] {
		return nil, domain.ErrInFlight
	}
	l.inFlight[id] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.inFlight, id)
			l.mu.Unlock()
		})
	}, nil
}

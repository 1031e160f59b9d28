package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/Go-Like-Toggle/domain"
)

const (
	KeyInFlight    = "like:inflight:%s"
	DefaultLockTTL = 35 * time.Second
	releaseTimeout = 2 * time.Second
)

// KEYS = {锁}
// ARGV = {持有者 token}
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// inFlightLock serializes toggles of the same button across processes
type inFlightLock struct {
	client   redis.Cmdable
	ttl      time.Duration
	newToken func() string
}

var _ domain.InFlightLock = (*inFlightLock)(nil)

// NewInFlightLock creates a redis backed lock.
// ttl bounds how long a crashed holder can block a button; keep it above the request timeout.
func NewInFlightLock(client redis.Cmdable, ttl time.Duration) *inFlightLock {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &inFlightLock{
		client:   client,
		ttl:      ttl,
		newToken: uuid.NewString,
	}
}

func (l *inFlightLock) Acquire(ctx context.Context, id string) (func(), error) {
	key := fmt.Sprintf(KeyInFlight, id)
	token := l.newToken()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInFlight
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// 请求的 ctx 可能已经取消，释放锁使用独立的 ctx
			rctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()
			if err := releaseScript.Run(rctx, l.client, []string{key}, token).Err(); err != nil {
				logrus.Warnf("failed to release in-flight lock %s: %v", key, err)
			}
		})
	}, nil
}

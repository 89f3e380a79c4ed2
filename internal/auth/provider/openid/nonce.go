package openid

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NonceMaxAge is how far a response nonce timestamp may drift from now.
const NonceMaxAge = 60 * time.Second

var (
	ErrNonceMalformed = errors.New("openid: malformed response nonce")
	ErrNonceExpired   = errors.New("openid: response nonce outside accepted window")
	ErrNonceReused    = errors.New("openid: response nonce already used")
)

// RedisNonceStore records accepted response nonces in Redis so a replayed
// assertion is rejected by every replica.
type RedisNonceStore struct {
	client  redis.Cmdable
	prefix  string
	maxAge  time.Duration
	timeout time.Duration
	now     func() time.Time
}

func NewRedisNonceStore(client redis.Cmdable) *RedisNonceStore {
	return &RedisNonceStore{
		client:  client,
		prefix:  "openid:nonce:",
		maxAge:  NonceMaxAge,
		timeout: 2 * time.Second,
		now:     time.Now,
	}
}

func (s *RedisNonceStore) key(endpoint, nonce string) string {
	return s.prefix + endpoint + "#" + nonce
}

// Accept implements the openid-go NonceStore interface.
func (s *RedisNonceStore) Accept(endpoint, nonce string) error {
	// Nonces start with a UTC timestamp: 2005-05-15T17:11:51Z
	if len(nonce) < 20 {
		return ErrNonceMalformed
	}
	ts, err := time.Parse(time.RFC3339, nonce[:20])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNonceMalformed, err)
	}

	diff := s.now().Sub(ts)
	if diff > s.maxAge || diff < -s.maxAge {
		return ErrNonceExpired
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	// A timestamp stays acceptable for at most 2*maxAge.
	ok, err := s.client.SetNX(ctx, s.key(endpoint, nonce), 1, 2*s.maxAge).Result()
	if err != nil {
		return fmt.Errorf("openid: store nonce: %w", err)
	}
	if !ok {
		return ErrNonceReused
	}
	return nil
}

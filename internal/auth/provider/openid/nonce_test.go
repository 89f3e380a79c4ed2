package openid

import (
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

const testEndpoint = "https://provider.example/openid/login"

func newTestNonceStore(now time.Time) (*RedisNonceStore, redismock.ClientMock) {
	client, mock := redismock.NewClientMock()
	store := NewRedisNonceStore(client)
	store.now = func() time.Time { return now }
	return store, mock
}

func TestRedisNonceStoreAccept(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	store, mock := newTestNonceStore(now)
	nonce := "2026-10-15T11:59:50Zabc123"

	mock.ExpectSetNX("openid:nonce:"+testEndpoint+"#"+nonce, 1, 2*NonceMaxAge).SetVal(true)

	assert.NoError(t, store.Accept(testEndpoint, nonce))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisNonceStoreReplay(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	store, mock := newTestNonceStore(now)
	nonce := "2026-10-15T11:59:50Zabc123"

	mock.ExpectSetNX("openid:nonce:"+testEndpoint+"#"+nonce, 1, 2*NonceMaxAge).SetVal(false)

	assert.ErrorIs(t, store.Accept(testEndpoint, nonce), ErrNonceReused)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisNonceStoreRedisError(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	store, mock := newTestNonceStore(now)
	nonce := "2026-10-15T11:59:50Zabc123"

	mock.ExpectSetNX("openid:nonce:"+testEndpoint+"#"+nonce, 1, 2*NonceMaxAge).SetErr(errors.New("connection refused"))

	assert.ErrorContains(t, store.Accept(testEndpoint, nonce), "connection refused")
}

func TestRedisNonceStoreRejectsBadTimestamps(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	store, mock := newTestNonceStore(now)

	assert.ErrorIs(t, store.Accept(testEndpoint, "short"), ErrNonceMalformed)
	assert.ErrorIs(t, store.Accept(testEndpoint, "not-a-timestamp-at-all"), ErrNonceMalformed)
	assert.ErrorIs(t, store.Accept(testEndpoint, "2026-10-15T11:58:00Zold"), ErrNonceExpired)
	assert.ErrorIs(t, store.Accept(testEndpoint, "2026-10-15T12:05:00Zfuture"), ErrNonceExpired)

	// none of the rejected nonces reach redis
	assert.NoError(t, mock.ExpectationsWereMet())
}

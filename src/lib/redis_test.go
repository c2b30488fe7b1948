package lib

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker() (*Locker, redismock.ClientMock) {
	rdb, mock := redismock.NewClientMock()
	l := NewLocker(rdb, 10*time.Second)
	l.retry = time.Millisecond
	l.newToken = func() string { return "token-1" }
	return l, mock
}

func TestLockerAcquireAndRelease(t *testing.T) {
	l, mock := newTestLocker()
	key := LockKey("a_at_b_com")
	assert.Equal(t, "booking::a_at_b_com:lock", key)

	mock.ExpectSetNX(key, "token-1", 10*time.Second).SetVal(true)
	mock.ExpectEval(unlockScript, []string{key}, "token-1").SetVal(int64(1))

	unlock, err := l.Lock(context.Background(), key)
	require.Nil(t, err)
	unlock()
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestLockerRetriesUntilFree(t *testing.T) {
	l, mock := newTestLocker()
	key := LockKey("a_at_b_com")

	mock.ExpectSetNX(key, "token-1", 10*time.Second).SetVal(false)
	mock.ExpectSetNX(key, "token-1", 10*time.Second).SetVal(true)

	_, err := l.Lock(context.Background(), key)
	require.Nil(t, err)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestLockerTimesOut(t *testing.T) {
	l, mock := newTestLocker()
	key := LockKey("a_at_b_com")
	l.retry = 20 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	mock.ExpectSetNX(key, "token-1", 10*time.Second).SetVal(false)

	_, err := l.Lock(ctx, key)
	assert.True(t, errors.Is(err, ErrLockTimeout))
}

func TestLockerPropagatesRedisErrors(t *testing.T) {
	l, mock := newTestLocker()
	key := LockKey("a_at_b_com")
	mock.ExpectSetNX(key, "token-1", 10*time.Second).SetErr(errors.New("connection refused"))

	_, err := l.Lock(context.Background(), key)
	assert.NotNil(t, err)
	assert.False(t, errors.Is(err, ErrLockTimeout))
}

package ratelimiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/skillswap/pkg/apperror"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb), mr
}

func TestAcquireBlocksUntilCooldownExpires(t *testing.T) {
	l, mr := newLimiter(t)
	ctx := context.Background()
	user := uuid.New()

	release, err := l.Acquire(ctx, user, ScopeMessage, 10*time.Second)
	require.NoError(t, err)
	require.NotNil(t, release)

	_, err = l.Acquire(ctx, user, ScopeMessage, 10*time.Second)
	var rlErr *RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)
	assert.Greater(t, rlErr.RetryAfter, time.Duration(0))

	// Other users and scopes are independent.
	_, err = l.Acquire(ctx, uuid.New(), ScopeMessage, 10*time.Second)
	assert.NoError(t, err)
	_, err = l.Acquire(ctx, user, ScopeProposal, 10*time.Second)
	assert.NoError(t, err)

	mr.FastForward(11 * time.Second)
	_, err = l.Acquire(ctx, user, ScopeMessage, 10*time.Second)
	assert.NoError(t, err)
}

func TestReleaseClearsCooldown(t *testing.T) {
	l, _ := newLimiter(t)
	ctx := context.Background()
	user := uuid.New()

	release, err := l.Acquire(ctx, user, ScopeProposal, time.Minute)
	require.NoError(t, err)
	release()

	_, err = l.Acquire(ctx, user, ScopeProposal, time.Minute)
	assert.NoError(t, err)
}

func TestNilLimiterAllows(t *testing.T) {
	var l *Limiter
	allowed, err := l.CheckAndSet(context.Background(), uuid.New(), ScopeApply, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = New(nil).CheckAndSet(context.Background(), uuid.New(), ScopeApply, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

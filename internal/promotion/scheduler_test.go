package promotion

import (
	"context"
	"testing"
	"time"

	"stackit/internal/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler(NewJob(&mockStore{}, 10, nil), "every tuesday-ish")
	assert.Error(t, s.Start())
	assert.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(NewJob(&mockStore{}, 10, nil), "")
	assert.Equal(t, DefaultSchedule, s.spec)

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_TickHonoursLock(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = cache.Close() })

	store := &mockStore{}
	store.On("FindPromotionCandidates", mock.Anything, 10).Return([]uint{}, nil)
	s := NewScheduler(NewJob(store, 10, nil), DefaultSchedule)
	s.ctx = context.Background()

	s.tick()
	assert.True(t, mr.Exists(cache.PromotionLockKey))
	ttl := mr.TTL(cache.PromotionLockKey)
	assert.Greater(t, ttl, time.Duration(0))

	// a second replica on the same tick does nothing
	s.tick()
	store.AssertNumberOfCalls(t, "FindPromotionCandidates", 1)

	mr.FastForward(lockTTL + time.Second)
	s.tick()
	store.AssertNumberOfCalls(t, "FindPromotionCandidates", 2)
}

func TestScheduler_TickWithoutRedis(t *testing.T) {
	cache.SetClient(nil)
	store := &mockStore{}
	store.On("FindPromotionCandidates", mock.Anything, 10).Return([]uint{}, nil)
	s := NewScheduler(NewJob(store, 10, nil), DefaultSchedule)
	s.ctx = context.Background()

	s.tick()
	s.tick()
	store.AssertNumberOfCalls(t, "FindPromotionCandidates", 2)
}

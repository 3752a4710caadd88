package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = Close() })
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			calls++
			*dest = payload{Name: "go", Count: 3}
			return nil
		}
	}

	var first payload
	require.NoError(t, Aside(ctx, "k", &first, time.Minute, fetch(&first)))
	assert.Equal(t, payload{Name: "go", Count: 3}, first)
	assert.True(t, mr.Exists("k"))

	var second payload
	require.NoError(t, Aside(ctx, "k", &second, time.Minute, fetch(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	mr.FastForward(2 * time.Minute)
	var third payload
	require.NoError(t, Aside(ctx, "k", &third, time.Minute, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	mr := setupMiniredis(t)

	var dest payload
	err := Aside(context.Background(), "broken", &dest, time.Minute, func() error {
		return errors.New("db down")
	})
	assert.EqualError(t, err, "db down")
	assert.False(t, mr.Exists("broken"))
}

func TestAside_NoClient(t *testing.T) {
	SetClient(nil)

	var dest payload
	err := Aside(context.Background(), "k", &dest, time.Minute, func() error {
		dest.Name = "fallback"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fallback", dest.Name)

	found, err := GetJSON(context.Background(), "k", &dest)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidateUser(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, UserKey(7), payload{Name: "u"}, UserTTL))
	require.NoError(t, SetJSON(ctx, AdminStatsKey, payload{Count: 1}, AdminStatsTTL))

	InvalidateUser(ctx, 7)
	assert.False(t, mr.Exists("user:7"))
	assert.False(t, mr.Exists(AdminStatsKey))
}

func TestInvalidateTrending(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, TrendingTagsKey(10), []payload{{Name: "go"}}, TrendingTagsTTL))
	require.NoError(t, SetJSON(ctx, TrendingTagsKey(20), []payload{{Name: "go"}}, TrendingTagsTTL))
	require.NoError(t, SetJSON(ctx, UserKey(1), payload{}, UserTTL))

	InvalidateTrending(ctx)
	assert.False(t, mr.Exists(TrendingTagsKey(10)))
	assert.False(t, mr.Exists(TrendingTagsKey(20)))
	assert.True(t, mr.Exists(UserKey(1)))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "user:42", UserKey(42))
	assert.Equal(t, "tags:trending:10", TrendingTagsKey(10))
	assert.Equal(t, "ws_ticket:abc", WSTicketKey("abc"))
	assert.Equal(t, "blacklist:j1", RevokedTokenKey("j1"))
}

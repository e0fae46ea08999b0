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

func newCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, "test", time.Minute), mr
}

type entry struct {
	Name string `json:"name"`
}

func TestGetSet(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	var got entry
	ok, err := c.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "categories:all", entry{Name: "go"}))
	assert.True(t, mr.Exists("test:categories:all"))
	assert.Equal(t, time.Minute, mr.TTL("test:categories:all"))

	ok, err = c.Get(ctx, "categories:all", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "go", got.Name)
}

func TestInvalidatePrefix(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "zones:a:ads", 1))
	require.NoError(t, c.Set(ctx, "zones:b:ads", 2))
	require.NoError(t, c.Set(ctx, "categories:all", 3))

	n, err := c.InvalidatePrefix(ctx, "zones:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, mr.Exists("test:zones:a:ads"))
	assert.True(t, mr.Exists("test:categories:all"))

	n, err = c.InvalidatePrefix(ctx, "zones:")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRemember(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) ([]entry, error) {
		calls++
		return []entry{{Name: "x"}}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := Remember(ctx, c, "list", load)
		require.NoError(t, err)
		assert.Equal(t, []entry{{Name: "x"}}, v)
	}
	assert.Equal(t, 1, calls)

	_, err := Remember(ctx, c, "failing", func(context.Context) (int, error) { return 0, errors.New("db down") })
	assert.EqualError(t, err, "db down")
}

func TestRememberSurvivesRedisOutage(t *testing.T) {
	c, mr := newCache(t)
	mr.Close()

	v, err := Remember(context.Background(), c, "k", func(context.Context) (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)

	v, err = Remember[string](context.Background(), nil, "k", func(context.Context) (string, error) { return "nocache", nil })
	require.NoError(t, err)
	assert.Equal(t, "nocache", v)
}

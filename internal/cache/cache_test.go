package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camerontabion/JurisFlo/internal/reconcile"
)

func setupTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), "redis://"+s.Addr(), "test:", time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, s
}

func TestNewRedisCache(t *testing.T) {
	c, _ := setupTestCache(t)
	assert.NoError(t, c.Ping(context.Background()))

	_, err := NewRedisCache(context.Background(), "://bad", "", 0)
	assert.ErrorContains(t, err, "parse redis url")
}

func TestNewRedisCacheWithClient_Defaults(t *testing.T) {
	c := NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: "localhost:0"}), "", 0)
	defer c.Close()

	assert.Equal(t, DefaultPrefix, c.prefix)
	assert.Equal(t, DefaultTTL, c.ttl)
}

func TestRedisCache_Key(t *testing.T) {
	c, _ := setupTestCache(t)

	k1 := c.Key("same text")
	assert.Equal(t, k1, c.Key("same text"))
	assert.NotEqual(t, k1, c.Key("other text"))
	assert.Len(t, k1, len("test:")+64)
	assert.Equal(t, "test:", k1[:5])
}

func TestRedisCache_GetSet(t *testing.T) {
	c, s := setupTestCache(t)
	ctx := context.Background()
	text := "This SAFE is issued by [Company Name] on [Date]."

	fields, ok, err := c.Get(ctx, text)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, fields)

	in := []reconcile.Field{
		{Key: "company_name", Label: "Company Name", Pattern: "[Company Name]", Scope: reconcile.ScopeCompany, Value: "Acme",
			Match: &reconcile.Match{Start: 22, End: 36}},
		{Key: "date", Label: "Date", Pattern: "[Date]", Scope: reconcile.ScopeDocument},
	}
	require.NoError(t, c.Set(ctx, text, in))

	got, ok, err := c.Get(ctx, text)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "company_name", got[0].Key)
	assert.Empty(t, got[0].Value)
	assert.Nil(t, got[0].Match)
	assert.Equal(t, "Acme", in[0].Value, "input must not be modified")

	assert.Equal(t, time.Hour, s.TTL(c.Key(text)))

	s.FastForward(2 * time.Hour)
	_, ok, err = c.Get(ctx, text)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	c, s := setupTestCache(t)
	text := "doc"
	require.NoError(t, s.Set(c.Key(text), "{not json"))

	_, ok, err := c.Get(context.Background(), text)
	assert.False(t, ok)
	assert.ErrorContains(t, err, "cache decode")
}

func TestRedisCache_ServerDown(t *testing.T) {
	c, s := setupTestCache(t)
	s.Close()

	_, ok, err := c.Get(context.Background(), "doc")
	assert.False(t, ok)
	assert.Error(t, err)
	assert.Error(t, c.Set(context.Background(), "doc", nil))
}

func TestNop(t *testing.T) {
	var c ExtractionCache = Nop{}
	fields, ok, err := c.Get(context.Background(), "x")
	assert.Nil(t, fields)
	assert.False(t, ok)
	assert.NoError(t, err)
	assert.NoError(t, c.Set(context.Background(), "x", nil))
}

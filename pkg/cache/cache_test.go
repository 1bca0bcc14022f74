package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type session struct {
	Token string `json:"token"`
	ID    string `json:"id"`
}

func TestBadgerCacheSetGetDelete(t *testing.T) {
	c, err := NewBadgerCache[session]("test:", time.Minute)
	require.NoError(t, err)
	defer c.Close()

	_, ok, err := c.Get("alice")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set("alice", session{Token: "t1", ID: "u1"}, 0))
	got, ok, err := c.Get("alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, session{Token: "t1", ID: "u1"}, got)

	require.NoError(t, c.Delete("alice"))
	_, ok, err = c.Get("alice")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = c.Get("  ")
	assert.Error(t, err)
}

func TestBadgerCacheExpiry(t *testing.T) {
	c, err := NewBadgerCache[string]("ttl:", time.Hour)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("k", "v", time.Second))
	_, ok, err := c.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)

	// badger expiry has second granularity
	time.Sleep(2100 * time.Millisecond)
	_, ok, err = c.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBadgerCacheClosed(t *testing.T) {
	c, err := NewBadgerCache[string]("x:", 0)
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, _, err = c.Get("k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.Set("k", "v", 0), ErrClosed)
	assert.ErrorIs(t, c.Delete("k"), ErrClosed)
	_, err = c.DeletePrefix("k")
	assert.ErrorIs(t, err, ErrClosed)

	var _ Cache[string] = c
}

func TestBadgerCacheDeletePrefix(t *testing.T) {
	c, err := NewBadgerCache[string]("p:", time.Minute)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("alice:1", "a", 0))
	require.NoError(t, c.Set("alice:2", "b", 0))
	require.NoError(t, c.Set("alicia:1", "c", 0))

	n, err := c.DeletePrefix("alice:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, ok, err := c.Get("alice:1")
	require.NoError(t, err)
	assert.False(t, ok)
	got, ok, err := c.Get("alicia:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c", got)

	n, err = c.DeletePrefix("nobody:")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBadgerCacheManyEntries(t *testing.T) {
	c, err := NewBadgerCache[session]("many:", time.Minute)
	require.NoError(t, err)
	defer c.Close()

	for i := 0; i < 5000; i++ {
		require.NoError(t, c.Set(fmt.Sprintf("u%d", i), session{Token: fmt.Sprintf("t%d", i)}, 0))
	}
	got, ok, err := c.Get("u4321")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "t4321", got.Token)
}

package presence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOnlineAndHandle(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	_, online, err := r.Handle(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, online)

	require.NoError(t, r.SetOnline(ctx, "alice", "handle-1"))

	handle, online, err := r.Handle(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, online)
	assert.Equal(t, "handle-1", handle)
}

func TestReconnectOverwritesHandle(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	require.NoError(t, r.SetOnline(ctx, "alice", "handle-1"))
	require.NoError(t, r.SetOnline(ctx, "alice", "handle-2"))

	handle, online, err := r.Handle(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, online)
	assert.Equal(t, "handle-2", handle)
}

func TestClearIsConditionalOnHandle(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	// Reconnect replaces the handle, then the old connection's teardown
	// fires. The stale clear must not evict the new connection.
	require.NoError(t, r.SetOnline(ctx, "alice", "handle-1"))
	require.NoError(t, r.SetOnline(ctx, "alice", "handle-2"))
	require.NoError(t, r.Clear(ctx, "alice", "handle-1"))

	handle, online, err := r.Handle(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, online)
	assert.Equal(t, "handle-2", handle)

	// The current connection's clear takes the user offline.
	require.NoError(t, r.Clear(ctx, "alice", "handle-2"))
	_, online, err = r.Handle(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, online)

	// Clearing an absent entry is a no-op.
	require.NoError(t, r.Clear(ctx, "alice", "handle-2"))
}

func TestOnlineUserIds(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	ids, err := r.OnlineUserIds(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, r.SetOnline(ctx, "alice", "h1"))
	require.NoError(t, r.SetOnline(ctx, "bob", "h2"))
	require.NoError(t, r.SetOnline(ctx, "bob", "h3")) // reconnect, still one entry

	ids, err = r.OnlineUserIds(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, ids)
}

// Package presence tracks which users currently hold a live connection.
// Entry existence is the online signal; there is no separate TTL. A user
// holds at most one connection handle, and reconnecting overwrites the
// previous one.
package presence

import "context"

type Registry interface {
	// SetOnline upserts the user's handle, replacing any prior one.
	SetOnline(ctx context.Context, userId, handle string) error
	// Handle returns the user's current connection handle, if any.
	Handle(ctx context.Context, userId string) (string, bool, error)
	// Clear removes the user's entry only if it still holds handle, so a
	// superseded connection's disconnect cannot evict its replacement.
	// Clearing an absent or superseded entry is a no-op.
	Clear(ctx context.Context, userId, handle string) error
	// OnlineUserIds lists every user with a registered handle.
	OnlineUserIds(ctx context.Context) ([]string, error)
}

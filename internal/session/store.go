package session

import (
	"context"

	"worklog-bot/internal/flow"
)

// Store holds one conversation session per user identity. A missing
// key is not an error: Get returns a fresh Idle session for unknown
// users, which is how first contact creates a session. Only backend
// I/O failure returns a non-nil error.
//
// Implementations must be safe for concurrent use and must never let a
// Get observe a torn value: every Get returns a session produced by
// some prior complete Set.
type Store interface {
	Get(ctx context.Context, userID string) (flow.Session, error)
	Set(ctx context.Context, userID string, sess flow.Session) error
	Clear(ctx context.Context, userID string) error
}

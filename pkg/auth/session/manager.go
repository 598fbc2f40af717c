package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	redisclient "github.com/angelmondragon/secureguard-backend/pkg/redis"
)

type denylistStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

type denylistKeyer interface {
	RevokedTokenKey(tokenID string) string
}

// RevocationChecker exposes the read-only surface needed by the auth gate.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Manager keeps a denylist of logged-out token ids until the tokens would expire anyway.
type Manager struct {
	store denylistStore
	keyer denylistKeyer
}

// NewManager constructs a revocation manager backed by Redis.
func NewManager(client *redisclient.Client) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Manager{store: client, keyer: client}, nil
}

// Revoke denylists tokenID until expiresAt. Already expired tokens need no entry.
func (m *Manager) Revoke(ctx context.Context, tokenID string, expiresAt, now time.Time) error {
	if strings.TrimSpace(tokenID) == "" {
		return fmt.Errorf("token id is required")
	}
	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		return nil
	}
	return m.store.Set(ctx, m.keyer.RevokedTokenKey(tokenID), "1", ttl)
}

// IsRevoked reports whether tokenID was revoked. Tokens without an id cannot be revoked.
func (m *Manager) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if strings.TrimSpace(tokenID) == "" {
		return false, nil
	}
	return m.store.Exists(ctx, m.keyer.RevokedTokenKey(tokenID))
}

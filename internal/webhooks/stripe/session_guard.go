package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// SessionGuard lets one delivery at a time finish a checkout session. A
// claim lasts for ttl; once the completion succeeds it is kept until expiry
// so gateway retries are acknowledged without touching the order again.
type SessionGuard struct {
	store redis.Claimer
	ttl   time.Duration
	scope string
}

func NewSessionGuard(store redis.Claimer, ttl time.Duration, scope string) (*SessionGuard, error) {
	switch {
	case store == nil:
		return nil, errors.New("claim store is required")
	case ttl <= 0:
		return nil, errors.New("claim ttl must be positive")
	case scope == "":
		return nil, errors.New("scope is required")
	}
	return &SessionGuard{store: store, ttl: ttl, scope: scope}, nil
}

// Claim returns the claim token and true when the caller now owns sessionID.
// False means another delivery holds or already completed it.
func (g *SessionGuard) Claim(ctx context.Context, sessionID string) (string, bool, error) {
	if sessionID == "" {
		return "", false, errors.New("session id is required")
	}
	token := uuid.NewString()
	won, err := g.store.SetNX(ctx, redis.IdempotencyKey(g.scope, sessionID), token, g.ttl)
	if err != nil {
		return "", false, fmt.Errorf("claim session %s: %w", sessionID, err)
	}
	if !won {
		return "", false, nil
	}
	return token, true, nil
}

// Release gives a failed claim back so the next retry can process the session.
// A claim that expired and was taken by another delivery is left alone.
func (g *SessionGuard) Release(ctx context.Context, sessionID, token string) error {
	if sessionID == "" || token == "" {
		return nil
	}
	if _, err := g.store.DeleteIfValue(ctx, redis.IdempotencyKey(g.scope, sessionID), token); err != nil {
		return fmt.Errorf("release session %s: %w", sessionID, err)
	}
	return nil
}

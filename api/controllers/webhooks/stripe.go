package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/internal/payment"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const maxWebhookBody = 1 << 16

type webhookService interface {
	HandleEvent(ctx context.Context, event payment.Event) error
}

type eventVerifier interface {
	ConstructEvent(payload []byte, signature string) (payment.Event, error)
}

type sessionGuard interface {
	Claim(ctx context.Context, sessionID string) (token string, won bool, err error)
	Release(ctx context.Context, sessionID, token string) error
}

// StripeWebhook verifies gateway events and finishes completed checkouts.
// Replays of an already processed session are acknowledged without side effects.
func StripeWebhook(svc webhookService, verifier eventVerifier, guard sessionGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || verifier == nil || guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook dependencies unavailable"))
			return
		}

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		signature, err := payment.SignatureFromHeader(r.Header)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		event, err := verifier.ConstructEvent(payload, signature)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sessionID := event.Session.SessionID
		var token string
		if sessionID != "" {
			claimed, won, err := guard.Claim(ctx, sessionID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim checkout session"))
				return
			}
			if !won {
				if logg != nil {
					logg.Info(logg.WithSessionID(ctx, sessionID), "webhook.duplicate_ignored")
				}
				responses.WriteSuccess(w, map[string]bool{"received": true})
				return
			}
			token = claimed
		}

		if err := svc.HandleEvent(ctx, event); err != nil {
			if relErr := guard.Release(ctx, sessionID, token); relErr != nil && logg != nil {
				logg.Error(logg.WithSessionID(ctx, sessionID), "webhook.release_failed", relErr)
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"received": true})
	}
}

package stripewebhook

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/internal/payment"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type paymentCompleter interface {
	CompleteThePayment(ctx context.Context, session payment.Session) error
}

type cartResetter interface {
	Reset(ctx context.Context, userID string) error
}

type ServiceParams struct {
	Payments paymentCompleter
	Carts    cartResetter
	Logger   *logger.Logger
}

// Service applies verified gateway events to orders and carts.
type Service struct {
	payments paymentCompleter
	carts    cartResetter
	logg     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment service required")
	}
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		payments: params.Payments,
		carts:    params.Carts,
		logg:     params.Logger,
	}, nil
}

// HandleEvent completes the paid order and empties the buyer's cart. Both run
// even when the other fails; their errors are combined.
func (s *Service) HandleEvent(ctx context.Context, event payment.Event) error {
	if event.Type != payment.EventCheckoutCompleted {
		return pkgerrors.Payment(pkgerrors.ReasonUnhandledEvent, nil).
			WithDetails(map[string]any{"event_type": string(event.Type)})
	}
	session := event.Session
	ctx = s.logg.WithSessionID(ctx, session.SessionID)
	ctx = s.logg.WithOrderID(ctx, session.OrderDetail.OrderID)
	ctx = s.logg.WithUserID(ctx, session.OrderDetail.BuyerID)

	var wg sync.WaitGroup
	var completeErr, cartErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		completeErr = s.payments.CompleteThePayment(ctx, session)
	}()
	go func() {
		defer wg.Done()
		if err := s.carts.Reset(ctx, session.OrderDetail.BuyerID); err != nil {
			cartErr = fmt.Errorf("reset cart: %w", err)
		}
	}()
	wg.Wait()

	if err := multierr.Combine(completeErr, cartErr); err != nil {
		s.logg.Error(ctx, "webhook.checkout_completed.failed", err)
		return err
	}
	s.logg.Info(ctx, "webhook.checkout_completed.processed")
	return nil
}

package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

// RestoreUnpaidOrdersJobName is the registry and lock name of the restock job.
const RestoreUnpaidOrdersJobName = "restore-unpaid-orders"

type unpaidOrderRestorer interface {
	RestoreUnpaidOrders(ctx context.Context, now time.Time) (int, error)
}

// RestoreUnpaidOrdersJobParams configure the unpaid order restock job.
type RestoreUnpaidOrdersJobParams struct {
	Logger  *logger.Logger
	Orders  unpaidOrderRestorer
	Metrics *metrics.CheckoutMetrics
	Now     func() time.Time
}

type restoreUnpaidOrdersJob struct {
	logg    *logger.Logger
	orders  unpaidOrderRestorer
	metrics *metrics.CheckoutMetrics
	now     func() time.Time
}

// NewRestoreUnpaidOrdersJob builds the job that deletes expired unpaid orders
// and returns their reserved stock to the products.
func NewRestoreUnpaidOrdersJob(params RestoreUnpaidOrdersJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &restoreUnpaidOrdersJob{
		logg:    params.Logger,
		orders:  params.Orders,
		metrics: params.Metrics,
		now:     now,
	}, nil
}

func (j *restoreUnpaidOrdersJob) Name() string { return RestoreUnpaidOrdersJobName }

func (j *restoreUnpaidOrdersJob) Run(ctx context.Context) error {
	restored, err := j.orders.RestoreUnpaidOrders(ctx, j.now())
	if err != nil {
		return fmt.Errorf("restore unpaid orders: %w", err)
	}
	j.metrics.AddRestoredOrders(restored)
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": restored})
	j.logg.Info(logCtx, "unpaid orders restored")
	return nil
}

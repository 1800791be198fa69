package product

import (
	"context"
	"time"
)

const (
	DefaultItemDelay  = 50 * time.Millisecond
	DefaultBatchDelay = 100 * time.Millisecond
)

// Pacer decides how long the processor suspends between items and between
// micro-batches. A non-nil error means the batch should stop.
type Pacer interface {
	AfterItem(ctx context.Context) error
	AfterBatch(ctx context.Context) error
}

// FixedThrottle pauses for constant durations with no adaptive backoff.
type FixedThrottle struct {
	ItemDelay  time.Duration
	BatchDelay time.Duration
}

func NewFixedThrottle(itemDelay, batchDelay time.Duration) *FixedThrottle {
	return &FixedThrottle{ItemDelay: itemDelay, BatchDelay: batchDelay}
}

func (t *FixedThrottle) AfterItem(ctx context.Context) error {
	return sleep(ctx, t.ItemDelay)
}

func (t *FixedThrottle) AfterBatch(ctx context.Context) error {
	return sleep(ctx, t.BatchDelay)
}

func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

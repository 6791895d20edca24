package colleges

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"referral-portal-server/referrals"
)

// withRetry wraps read-only store calls in a short, bounded backoff so a
// transient database hiccup does not fail a dashboard or leaderboard request.
// Mutations are never retried here; re-running a write could apply it twice.
func withRetry(ctx context.Context, fn func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxElapsedTime = 2 * time.Second

	return backoff.Retry(func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx))
}

func isPermanent(err error) bool {
	return errors.Is(err, referrals.ErrNotFound) ||
		errors.Is(err, referrals.ErrUnknownCode) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

package ingestion

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy is the single consolidated retry schedule for storage flushes
// during ingestion. Transient insert failures (connection blips, lock
// contention) are retried with exponential backoff; the reconciliation core
// itself never retries, it is a pure transform over already-stored data.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
}

// DefaultRetryPolicy retries a flush up to 4 times starting at 250ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 4, InitialInterval: 250 * time.Millisecond}
}

// Do runs op under the policy's backoff schedule.
func (p RetryPolicy) Do(op backoff.Operation) error {
	bo := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		bo.InitialInterval = p.InitialInterval
	}
	return backoff.Retry(op, backoff.WithMaxRetries(bo, p.MaxRetries))
}

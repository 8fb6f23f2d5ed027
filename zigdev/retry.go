package zigdev

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Default retry caps per interview step.
const (
	DefaultDescriptorRetries      = 3
	DefaultSimpleDescriptorRetries = 2
)

// InterviewBackoff returns an exponential-backoff-with-jitter policy
// capped at maxAttempts, used for Node Descriptor / Active Endpoints /
// Simple Descriptor retries. It wraps backoff.NewExponentialBackOff
// with backoff.WithMaxRetries so callers get a finite, terminating
// policy rather than hand-rolling attempt counting.
func InterviewBackoff(maxAttempts uint64) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 250 * time.Millisecond
	eb.MaxInterval = 5 * time.Second
	eb.Multiplier = 2.0
	eb.RandomizationFactor = 0.3
	return backoff.WithMaxRetries(eb, maxAttempts)
}

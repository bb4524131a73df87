package fetch

import (
	"context"
	"log"
	"time"

	"github.com/mrlokans/bookfetch/internal/config"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 1 * time.Second
)

// Policy is a fixed-count, fixed-delay retry schedule.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultPolicy makes three attempts one second apart.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: defaultMaxAttempts, Delay: defaultRetryDelay}
}

// PolicyFromConfig builds a Policy, falling back to the defaults for unset values.
func PolicyFromConfig(cfg config.Request) Policy {
	p := DefaultPolicy()
	if cfg.MaxRetries > 0 {
		p.MaxAttempts = cfg.MaxRetries
	}
	if cfg.RetryDelay > 0 {
		p.Delay = cfg.RetryDelay
	}
	return p
}

// Retry runs op until it succeeds, fails with an error IsTransport does not
// recognise, or MaxAttempts is used up. It never returns an error: every
// failure path yields zero.
func Retry[T any](ctx context.Context, p Policy, op func(context.Context) (T, error), zero T) T {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result
		}

		if !IsTransport(err) {
			log.Printf("[fetch] giving up, not retryable: %v", err)
			return zero
		}
		if attempt == attempts {
			log.Printf("[fetch] giving up after %d attempts: %v", attempts, err)
			return zero
		}

		log.Printf("[fetch] attempt %d/%d failed, retrying in %v: %v", attempt, attempts, p.Delay, err)
		select {
		case <-ctx.Done():
			return zero
		case <-time.After(p.Delay):
		}
	}
	return zero
}

package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = time.Second
	defaultMaxJitter  = 500 * time.Millisecond

	backoffFactor = 1.5
)

// Policy describes how many times a failed operation is re-invoked and how
// long to wait between invocations.
type Policy struct {
	MaxRetries uint
	BaseDelay  time.Duration
	MaxJitter  time.Duration
}

func Default() Policy {
	return Policy{
		MaxRetries: defaultMaxRetries,
		BaseDelay:  defaultBaseDelay,
		MaxJitter:  defaultMaxJitter,
	}
}

// Chunk is used for log queries, which providers throttle more aggressively.
func Chunk() Policy {
	return Policy{
		MaxRetries: 7,
		BaseDelay:  5 * time.Second,
		MaxJitter:  defaultMaxJitter,
	}
}

// Light is used for cheap per-item fallbacks.
func Light() Policy {
	return Policy{
		MaxRetries: 2,
		BaseDelay:  500 * time.Millisecond,
		MaxJitter:  defaultMaxJitter,
	}
}

// Backoff returns the deterministic part of the delay before retry n (0-based).
func (p Policy) Backoff(n uint) time.Duration {
	return time.Duration(float64(p.BaseDelay) * math.Pow(backoffFactor, float64(n)))
}

func (p Policy) delay(n uint, _ error, _ *retry.Config) time.Duration {
	d := p.Backoff(n)
	if p.MaxJitter > 0 {
		d += time.Duration(rand.Int63n(int64(p.MaxJitter))) //nolint:gosec
	}
	return d
}

// Do runs fn and re-invokes it on failure up to p.MaxRetries times.
// The last error is returned as is.
func Do[T any](ctx context.Context, p Policy, fn func() (T, error)) (T, error) {
	attempts := p.MaxRetries + 1

	return retry.DoWithData(fn,
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.DelayType(p.delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Debug().
				Uint("attempt", n+1).
				Uint("max_attempts", attempts).
				Dur("backoff", p.Backoff(n)).
				Err(err).
				Msg("call failed, retrying")
		}),
	)
}

// Run is Do for operations without a result.
func Run(ctx context.Context, p Policy, fn func() error) error {
	_, err := Do(ctx, p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

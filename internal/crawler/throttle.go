package crawler

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// FixedDelay pauses d before every article except the first of a run.
func FixedDelay(d time.Duration) Pacer {
	return func() Throttle { return &fixedDelay{delay: d} }
}

type fixedDelay struct {
	delay   time.Duration
	started bool
}

func (f *fixedDelay) Wait(ctx context.Context) error {
	if !f.started || f.delay <= 0 {
		f.started = true
		return ctx.Err()
	}

	timer := time.NewTimer(f.delay)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RateLimit spaces the start of consecutive article fetches at least interval apart.
// Unlike FixedDelay, time spent fetching counts toward the interval.
func RateLimit(interval time.Duration) Pacer {
	return func() Throttle {
		if interval <= 0 {
			return noDelay{}
		}
		return rateLimit{limiter: rate.NewLimiter(rate.Every(interval), 1)}
	}
}

type rateLimit struct {
	limiter *rate.Limiter
}

func (r rateLimit) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// NoDelay never pauses.
func NoDelay() Pacer {
	return func() Throttle { return noDelay{} }
}

type noDelay struct{}

func (noDelay) Wait(ctx context.Context) error { return ctx.Err() }

// NewPacer maps a throttle mode name ("delay" or "rate") to a Pacer.
func NewPacer(mode string, d time.Duration) Pacer {
	if mode == "rate" {
		return RateLimit(d)
	}
	return FixedDelay(d)
}

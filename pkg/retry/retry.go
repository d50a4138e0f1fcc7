// Package retry runs an operation until it succeeds or a bounded number of
// attempts has been spent, waiting an exponentially growing, jittered delay
// between attempts.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

const (
	DefaultMaxRetries   = 3
	DefaultInitialDelay = 1000 * time.Millisecond
	DefaultFactor       = 2.0

	// MaxDelay caps a single wait regardless of attempt number.
	MaxDelay = 30 * time.Second

	JitterMin = 0.85
	JitterMax = 1.15
)

// Policy controls how many attempts are made and how long to wait between
// them. Zero or negative fields fall back to the defaults.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
	Factor       float64
}

// DefaultPolicy returns 3 attempts starting at one second, doubling.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   DefaultMaxRetries,
		InitialDelay: DefaultInitialDelay,
		Factor:       DefaultFactor,
	}
}

func (p Policy) normalize() Policy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = DefaultMaxRetries
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = DefaultInitialDelay
	}
	if p.Factor <= 0 {
		p.Factor = DefaultFactor
	}
	return p
}

// Delay returns the wait before the retry with the given 0-based index:
// InitialDelay * Factor^retry * jitter, capped at MaxDelay.
func Delay(p Policy, retry int, jitter float64) time.Duration {
	p = p.normalize()
	d := float64(p.InitialDelay) * math.Pow(p.Factor, float64(retry)) * jitter
	if d > float64(MaxDelay) || math.IsInf(d, 0) || math.IsNaN(d) {
		return MaxDelay
	}
	return time.Duration(d)
}

// Options overrides the randomness and clock used by Do. Tests use it to make
// waits deterministic and instant.
type Options struct {
	// Jitter returns a value in [JitterMin, JitterMax].
	Jitter func() float64
	// Sleep blocks for d or until ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry is called after a failed attempt, before waiting.
	OnRetry func(attempt int, wait time.Duration, err error)
}

func defaultJitter() float64 {
	return JitterMin + rand.Float64()*(JitterMax-JitterMin)
}

// SleepOrDone waits for the duration or returns early on context cancellation.
func SleepOrDone(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do calls op until it succeeds or p.MaxRetries attempts have failed. The op
// is always attempted at least once. When every attempt fails, the error of
// the last attempt is returned as is.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	return DoWithOptions(ctx, p, Options{}, op)
}

// DoWithOptions is Do with injectable jitter, sleep and retry hook.
func DoWithOptions[T any](ctx context.Context, p Policy, o Options, op func(ctx context.Context) (T, error)) (T, error) {
	p = p.normalize()
	if o.Jitter == nil {
		o.Jitter = defaultJitter
	}
	if o.Sleep == nil {
		o.Sleep = SleepOrDone
	}

	var zero T
	for attempt := 1; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		if attempt >= p.MaxRetries {
			return zero, err
		}

		wait := Delay(p, attempt-1, o.Jitter())
		if o.OnRetry != nil {
			o.OnRetry(attempt, wait, err)
		}
		if serr := o.Sleep(ctx, wait); serr != nil {
			return zero, serr
		}
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do stops at once and returns err
// itself, not the wrapper.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var perm *permanentError
	return errors.As(err, &perm)
}

// Package retry runs an operation under a bounded exponential backoff schedule.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

const (
	defaultMaxAttempts = 3
	defaultBase        = 4 * time.Second
	defaultCap         = 10 * time.Second
)

// Policy bounds how often and how patiently an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int
	// Base is the wait before the second attempt. Each later wait doubles.
	Base time.Duration
	// Cap is the upper bound for a single wait.
	Cap time.Duration
}

// DefaultPolicy returns three attempts with waits of 4s and 8s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: defaultMaxAttempts,
		Base:        defaultBase,
		Cap:         defaultCap,
	}
}

// WithDefaults fills zero fields from DefaultPolicy.
func (p Policy) WithDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.Base <= 0 {
		p.Base = defaultBase
	}
	if p.Cap <= 0 {
		p.Cap = defaultCap
	}
	return p
}

// Validate reports a policy that cannot produce a sane schedule.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be >= 1, got %d", p.MaxAttempts)
	}
	if p.Base <= 0 {
		return fmt.Errorf("retry base wait must be > 0, got %s", p.Base)
	}
	if p.Cap < p.Base {
		return fmt.Errorf("retry max wait %s is below base wait %s", p.Cap, p.Base)
	}
	return nil
}

// Backoff builds a fresh wait schedule for one operation.
// Backoffs are stateful and must not be shared between operations.
func (p Policy) Backoff() goretry.Backoff {
	p = p.WithDefaults()
	b := goretry.NewExponential(p.Base)
	b = goretry.WithCappedDuration(p.Cap, b)
	return goretry.WithMaxRetries(uint64(p.MaxAttempts-1), b)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Func is one attempt of a retried operation. Attempts are numbered from 1.
type Func func(ctx context.Context, attempt int) error

// Notify observes a failed attempt right before the wait that precedes the next one.
type Notify func(attempt int, err error, wait time.Duration)

type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return "retryable: " + e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// Retryable marks err as worth another attempt. Errors returned from a Func
// without this mark stop the loop immediately.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

type options struct {
	sleep  Sleeper
	notify Notify
}

// Option customizes Do.
type Option func(*options)

// WithSleeper replaces the wait between attempts.
func WithSleeper(s Sleeper) Option {
	return func(o *options) {
		if s != nil {
			o.sleep = s
		}
	}
}

// WithNotify registers a callback for every scheduled retry.
func WithNotify(n Notify) Option {
	return func(o *options) {
		o.notify = n
	}
}

// Do calls fn until it succeeds, returns an error not marked Retryable,
// or the policy runs out of attempts. The last attempt's error is returned
// without the retryable mark.
func Do(ctx context.Context, p Policy, fn Func, opts ...Option) error {
	o := options{sleep: Sleep}
	for _, opt := range opts {
		opt(&o)
	}

	b := p.Backoff()
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}

		var rerr *retryableError
		if !errors.As(err, &rerr) {
			return err
		}
		lastErr := rerr.Unwrap()

		wait, stop := b.Next()
		if stop {
			return lastErr
		}
		if o.notify != nil {
			o.notify(attempt, lastErr, wait)
		}
		if err := o.sleep(ctx, wait); err != nil {
			return errors.Join(err, lastErr)
		}
	}
}

// Package retry reattempts operations that failed with transient
// PostgreSQL or network errors, using exponential backoff with jitter.
// Only short pre-run probes go through it; a pg_dump capture is never
// retried once its stream has started.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Backoff is an exponential backoff schedule. Safe for concurrent use once
// constructed.
type Backoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
	maxAttempts  int
	jitter       float64
	jitterFunc   func() float64
}

// Option configures a Backoff.
type Option func(*Backoff)

// WithInitialDelay sets the delay before the first retry.
func WithInitialDelay(d time.Duration) Option {
	return func(b *Backoff) {
		b.initialDelay = d
	}
}

// WithMaxDelay caps the delay between attempts.
func WithMaxDelay(d time.Duration) Option {
	return func(b *Backoff) {
		b.maxDelay = d
	}
}

// WithJitterFunc sets the random source for jitter. Tests set a
// deterministic function.
func WithJitterFunc(f func() float64) Option {
	return func(b *Backoff) {
		b.jitterFunc = f
	}
}

// NewBackoff creates a Backoff allowing maxAttempts retries after the
// initial attempt.
func NewBackoff(maxAttempts int, opts ...Option) *Backoff {
	b := &Backoff{
		initialDelay: 100 * time.Millisecond,
		maxDelay:     5 * time.Second,
		multiplier:   2.0,
		maxAttempts:  maxAttempts,
		jitter:       0.1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// delay computes the wait before retry number attempt (0-based).
func (b *Backoff) delay(attempt int) time.Duration {
	delayMs := float64(b.initialDelay.Milliseconds()) * math.Pow(b.multiplier, float64(attempt))
	if delayMs > float64(b.maxDelay.Milliseconds()) {
		delayMs = float64(b.maxDelay.Milliseconds())
	}
	if b.jitter > 0 {
		jitterFunc := b.jitterFunc
		if jitterFunc == nil {
			jitterFunc = rand.Float64
		}
		// Map [0,1) to [-1,1) and scale by the jitter factor.
		delayMs *= 1.0 + b.jitter*(jitterFunc()-0.5)*2.0
	}
	return time.Duration(delayMs) * time.Millisecond
}

// Do runs op, retrying while it fails with a transient error and attempts
// remain. The delay between attempts respects context cancellation. The
// last error is returned when attempts are exhausted or the error is not
// transient.
func (b *Backoff) Do(ctx context.Context, op func(ctx context.Context) error) error {
	lastErr := op(ctx)
	if lastErr == nil || !IsTransient(lastErr) {
		return lastErr
	}

	for attempt := 0; attempt < b.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		timer := time.NewTimer(b.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		lastErr = op(ctx)
		if lastErr == nil || !IsTransient(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// IsTransient reports whether err is worth retrying: connection-class and
// resource-class PostgreSQL errors, serialization failures, and
// network-level failures. Authentication and syntax errors are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientCode(pgErr.Code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	// pgconn wraps dial failures without a PgError code.
	if strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset") {
		return true
	}
	return false
}

// isTransientCode checks the SQLSTATE class against the transient classes:
// 08 connection exception, 53 insufficient resources, 57 operator
// intervention, plus serialization failure, deadlock, and lock timeouts.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html
func isTransientCode(code string) bool {
	if strings.HasPrefix(code, "08") ||
		strings.HasPrefix(code, "53") ||
		strings.HasPrefix(code, "57") {
		return true
	}
	switch code {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}

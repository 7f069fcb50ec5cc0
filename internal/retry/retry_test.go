package retry

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastBackoff(maxAttempts int) *Backoff {
	return NewBackoff(maxAttempts,
		WithInitialDelay(time.Millisecond),
		WithMaxDelay(time.Millisecond),
		WithJitterFunc(func() float64 { return 0.5 }),
	)
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := fastBackoff(3).Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientErrors(t *testing.T) {
	transient := &pgconn.PgError{Code: "08006"}

	calls := 0
	err := fastBackoff(5).Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return transient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_DoesNotRetryFatalErrors(t *testing.T) {
	// 28P01 invalid_password, retrying cannot help.
	fatal := &pgconn.PgError{Code: "28P01"}

	calls := 0
	err := fastBackoff(5).Do(context.Background(), func(context.Context) error {
		calls++
		return fatal
	})

	assert.Equal(t, fatal, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	transient := &pgconn.PgError{Code: "53300"}

	calls := 0
	err := fastBackoff(2).Do(context.Background(), func(context.Context) error {
		calls++
		return transient
	})

	assert.Equal(t, transient, err)
	assert.Equal(t, 3, calls) // initial attempt plus two retries
}

func TestDo_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := fastBackoff(10).Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return &pgconn.PgError{Code: "08006"}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{name: "Nil", err: nil, transient: false},
		{name: "Connection failure", err: &pgconn.PgError{Code: "08006"}, transient: true},
		{name: "Too many connections", err: &pgconn.PgError{Code: "53300"}, transient: true},
		{name: "Admin shutdown", err: &pgconn.PgError{Code: "57P01"}, transient: true},
		{name: "Serialization failure", err: &pgconn.PgError{Code: "40001"}, transient: true},
		{name: "Deadlock", err: &pgconn.PgError{Code: "40P01"}, transient: true},
		{name: "Lock not available", err: &pgconn.PgError{Code: "55P03"}, transient: true},
		{name: "Invalid password", err: &pgconn.PgError{Code: "28P01"}, transient: false},
		{name: "Undefined table", err: &pgconn.PgError{Code: "42P01"}, transient: false},
		{name: "Connection refused", err: syscall.ECONNREFUSED, transient: true},
		{name: "Connection reset", err: syscall.ECONNRESET, transient: true},
		{name: "Wrapped dial failure", err: errors.New("failed to connect: connection refused"), transient: true},
		{name: "Plain error", err: errors.New("boom"), transient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, IsTransient(tt.err))
		})
	}
}

func TestBackoff_DelayGrowsAndCaps(t *testing.T) {
	b := NewBackoff(10,
		WithInitialDelay(100*time.Millisecond),
		WithMaxDelay(400*time.Millisecond),
		WithJitterFunc(func() float64 { return 0.5 }),
	)

	assert.Equal(t, 100*time.Millisecond, b.delay(0))
	assert.Equal(t, 200*time.Millisecond, b.delay(1))
	assert.Equal(t, 400*time.Millisecond, b.delay(2))
	assert.Equal(t, 400*time.Millisecond, b.delay(5))
}

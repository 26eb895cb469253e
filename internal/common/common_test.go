package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/service"
)

var fastRetry = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     time.Millisecond,
	Multiplier:   2,
}

func TestWithRetry(t *testing.T) {
	busy := errors.New("database is locked")
	fatal := errors.New("no such table")

	tests := []struct {
		op        func(calls int) error
		wantErr   error
		name      string
		wantCalls int
	}{
		{
			name:      "succeeds first try",
			op:        func(int) error { return nil },
			wantCalls: 1,
		},
		{
			name: "succeeds after transient failure",
			op: func(calls int) error {
				if calls < 2 {
					return &RetryableError{Err: busy, Retryable: true}
				}
				return nil
			},
			wantCalls: 2,
		},
		{
			name:      "stops on non-retryable error",
			op:        func(int) error { return &RetryableError{Err: fatal} },
			wantErr:   fatal,
			wantCalls: 1,
		},
		{
			name:      "gives up after max attempts",
			op:        func(int) error { return busy },
			wantErr:   ErrMaxRetries,
			wantCalls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int
			err := WithRetry(context.Background(), func() error {
				calls++
				return tt.op(calls)
			}, fastRetry)

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWithRetry_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error { return errors.New("busy") }, fastRetry)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrDatabaseBusy))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(&RetryableError{Err: errors.New("x")}))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestUserError(t *testing.T) {
	err := NewUserError("could not read file", ErrNotFound)
	assert.Equal(t, "could not read file: not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	require.NoError(t, SetupLogger(&buf, "debug", "json"))
	LogError(errors.New("boom"), "import failed", Fields{"file": "a.csv"})
	assert.Contains(t, buf.String(), `"msg":"import failed"`)
	assert.Contains(t, buf.String(), `"file":"a.csv"`)

	buf.Reset()
	require.NoError(t, SetupLogger(&buf, "warn", "pretty"))
	slog.Info("hidden")
	slog.Warn("budget over", "budget", "Dining")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "budget over")
	assert.Contains(t, buf.String(), "Dining")

	assert.ErrorIs(t, SetupLogger(&buf, "loud", "json"), ErrInvalidConfig)
	assert.ErrorIs(t, SetupLogger(&buf, "info", "xml"), ErrInvalidConfig)
}

package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctrans/internal/constants"
)

func shortRetryWaits(t *testing.T) {
	t.Helper()
	orig := constants.TransientRetryWaits
	constants.TransientRetryWaits = []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}
	t.Cleanup(func() { constants.TransientRetryWaits = orig })
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want ErrClass
	}{
		{&CapacityError{Err: errors.New("boom")}, ClassCapacity},
		{&TransientError{Err: errors.New("boom")}, ClassTransient},
		{fmt.Errorf("wrapped: %w", &CapacityError{Err: errors.New("boom")}), ClassCapacity},
		{errors.New("input exceeds maximum context length"), ClassCapacity},
		{errors.New("model requires more memory than available"), ClassCapacity},
		{errors.New("request too long for window"), ClassCapacity},
		{errors.New("dial tcp: connection refused"), ClassTransient},
		{errors.New("read: connection reset by peer"), ClassTransient},
		{errors.New("request timeout after 30s"), ClassTransient},
		{errors.New("server busy, try later"), ClassTransient},
		{errors.New("model not found"), ClassFatal},
		{errors.New("invalid api key"), ClassFatal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err), "error: %v", tt.err)
	}
}

func TestTransientErrorsRetriedWithWaits(t *testing.T) {
	shortRetryWaits(t)

	attempts := 0
	backend := &mockBackend{}
	backend.fn = func(text string) (string, error) {
		attempts++
		if attempts < 3 {
			return "", &TransientError{Err: errors.New("server busy")}
		}
		return "fr:" + text, nil
	}

	out, err := TranslateWithRecovery(context.Background(), backend, "Hello", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, "fr:Hello", out)
	assert.Equal(t, 3, attempts)
}

func TestTransientExhaustionSurfacesLastError(t *testing.T) {
	shortRetryWaits(t)

	backend := &mockBackend{fn: func(string) (string, error) {
		return "", &TransientError{Err: errors.New("still busy")}
	}}

	_, err := TranslateWithRecovery(context.Background(), backend, "Hello", "en", "fr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still busy")
}

func TestFatalErrorsSurfaceImmediately(t *testing.T) {
	backend := &mockBackend{fn: func(string) (string, error) {
		return "", errors.New("model not found")
	}}

	_, err := TranslateWithRecovery(context.Background(), backend, "Hello", "en", "fr")
	require.Error(t, err)
	assert.Len(t, backend.calls, 1, "fatal errors must not be retried")
}

func TestCapacityErrorTriggersChunking(t *testing.T) {
	// The backend rejects anything over 40 chars, forcing the paragraph to
	// be split and translated piecewise.
	backend := &mockBackend{}
	backend.fn = func(text string) (string, error) {
		if len([]rune(text)) > 40 {
			return "", &CapacityError{Err: errors.New("context window exceeded")}
		}
		return "T(" + text + ")", nil
	}

	input := "First sentence here. Second one too.\n\nNext paragraph follows. It also ends."
	out, err := TranslateWithRecovery(context.Background(), backend, input, "en", "fr")
	require.NoError(t, err)

	// Paragraph separator survives and every piece went through the backend.
	assert.Contains(t, out, "\n\n")
	assert.True(t, strings.HasPrefix(out, "T("))
	assert.Greater(t, len(backend.calls), 2)
}

func TestContextCancellationStopsRetries(t *testing.T) {
	orig := constants.TransientRetryWaits
	constants.TransientRetryWaits = []time.Duration{time.Hour}
	t.Cleanup(func() { constants.TransientRetryWaits = orig })

	backend := &mockBackend{fn: func(string) (string, error) {
		return "", &TransientError{Err: errors.New("busy")}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := TranslateWithRecovery(ctx, backend, "Hello", "en", "fr")
	require.ErrorIs(t, err, context.Canceled)
}

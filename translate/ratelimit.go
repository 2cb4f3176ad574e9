package translate

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/tmc/langchaingo/llms"
	"golang.org/x/time/rate"
)

// RateLimitConfig bounds the request rate against a shared local backend and
// adds short jittered retries below the translation-level recovery.
type RateLimitConfig struct {
	// RequestsPerMinute caps outgoing completions. Zero or negative disables
	// the limiter.
	RequestsPerMinute float64

	// MaxRetries is the number of quick in-place retries before an error is
	// handed up to the recovery layer. Defaults to 3.
	MaxRetries int

	// BackoffMaxWait caps the exponential backoff. Defaults to 30s.
	BackoffMaxWait time.Duration
}

// RateLimitedModel wraps an llms.Model with a token-bucket limiter and
// jittered exponential backoff. It sits below the capacity/transient
// classification: its retries handle blips, the recovery layer handles the
// rest.
type RateLimitedModel struct {
	inner      llms.Model
	limiter    *rate.Limiter
	maxRetries int
	backoffMin time.Duration
	backoffMax time.Duration
}

// NewRateLimitedModel wraps m with the given limits.
func NewRateLimitedModel(m llms.Model, cfg RateLimitConfig) *RateLimitedModel {
	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60.0), 1)
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	backoffMax := cfg.BackoffMaxWait
	if backoffMax <= 0 {
		backoffMax = 30 * time.Second
	}
	return &RateLimitedModel{
		inner:      m,
		limiter:    limiter,
		maxRetries: maxRetries,
		backoffMin: time.Second,
		backoffMax: backoffMax,
	}
}

// Call implements llms.Model.
func (r *RateLimitedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	var out string
	err := r.do(ctx, func() error {
		var callErr error
		out, callErr = r.inner.Call(ctx, prompt, options...)
		return callErr
	})
	return out, err
}

// GenerateContent implements llms.Model.
func (r *RateLimitedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var out *llms.ContentResponse
	err := r.do(ctx, func() error {
		var callErr error
		out, callErr = r.inner.GenerateContent(ctx, messages, options...)
		return callErr
	})
	return out, err
}

func (r *RateLimitedModel) do(ctx context.Context, call func() error) error {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		err := call()
		if err == nil {
			return nil
		}
		// Capacity failures cannot clear on a quick retry; hand them up so
		// chunking kicks in instead of burning attempts.
		if Classify(err) == ClassCapacity {
			return err
		}
		if attempt >= r.maxRetries {
			if lastErr != nil {
				return fmt.Errorf("all retry attempts failed, last error: %w", lastErr)
			}
			return err
		}

		backoff := r.backoffMin * time.Duration(1<<uint(attempt))
		if backoff > r.backoffMax {
			backoff = r.backoffMax
		}
		// +/- 20% jitter keeps concurrent workers from retrying in lockstep.
		jitter := time.Duration(float64(backoff) * (0.8 + 0.4*rand.Float64()))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(jitter):
			lastErr = err
		}
	}
}

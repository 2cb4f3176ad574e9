package translate

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"doctrans/internal/constants"
)

var log = logrus.New()

// TranslateWithRecovery runs one backend call and applies the recovery
// matching the failure class: transient errors get escalating blocking waits,
// capacity errors get chunked translation, anything else is surfaced
// unchanged.
func TranslateWithRecovery(ctx context.Context, b Backend, text, sourceLang, targetLang string) (string, error) {
	out, err := b.Translate(ctx, text, sourceLang, targetLang)
	if err == nil {
		return out, nil
	}

	switch Classify(err) {
	case ClassTransient:
		return retryTransient(ctx, b, text, sourceLang, targetLang, err)
	case ClassCapacity:
		log.Warnf("capacity error on %d-char unit, switching to chunked translation: %v", len([]rune(text)), err)
		return translateChunked(ctx, b, text, sourceLang, targetLang)
	default:
		return "", err
	}
}

func retryTransient(ctx context.Context, b Backend, text, sourceLang, targetLang string, firstErr error) (string, error) {
	lastErr := firstErr
	for attempt, wait := range constants.TransientRetryWaits {
		log.Warnf("transient backend error (attempt %d/%d), waiting %s: %v",
			attempt+1, len(constants.TransientRetryWaits), wait, lastErr)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}

		out, err := b.Translate(ctx, text, sourceLang, targetLang)
		if err == nil {
			return out, nil
		}
		// A capacity error mid-retry means the wait was never the problem.
		if Classify(err) == ClassCapacity {
			return translateChunked(ctx, b, text, sourceLang, targetLang)
		}
		lastErr = err
	}
	return "", fmt.Errorf("backend still failing after %d retries: %w",
		len(constants.TransientRetryWaits), lastErr)
}

// translateChunked splits an oversized unit down to digestible pieces,
// translates each piece on its own, and reassembles the result with the
// original separators.
func translateChunked(ctx context.Context, b Backend, text, sourceLang, targetLang string) (string, error) {
	units := ChunkText(text, constants.MaxChunkChars)
	log.Infof("chunked translation: %d chars split into %d units", len([]rune(text)), len(units))

	translated := make([]string, len(units))
	for i, u := range units {
		if u.Text == "" {
			continue
		}
		out, err := b.Translate(ctx, u.Text, sourceLang, targetLang)
		if err != nil {
			// One level of transient recovery per chunk; a second capacity
			// failure on a hard slice cannot be subdivided further.
			if Classify(err) == ClassTransient {
				out, err = retryTransient(ctx, b, u.Text, sourceLang, targetLang, err)
			}
			if err != nil {
				return "", fmt.Errorf("translating chunk %d/%d: %w", i+1, len(units), err)
			}
		}
		translated[i] = out
	}
	return JoinChunks(units, translated), nil
}

package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Backend translates a single piece of text. Implementations own prompt
// construction and transport; batching, caching and retry live above them.
type Backend interface {
	// Translate returns the target-language rendering of text. Errors should
	// be tagged with CapacityError or TransientError where the cause is
	// known, so the retry layer does not have to guess from message text.
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)

	// Name identifies the backend in logs and job records.
	Name() string
}

// ErrClass partitions backend failures by the recovery that can help.
type ErrClass int

const (
	// ClassFatal errors are surfaced verbatim; retrying cannot help.
	ClassFatal ErrClass = iota
	// ClassTransient errors (timeouts, busy backend, dropped connections)
	// are retried with escalating waits.
	ClassTransient
	// ClassCapacity errors (context or memory exhaustion) trigger chunked
	// translation of the failing unit.
	ClassCapacity
)

func (c ErrClass) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassCapacity:
		return "capacity"
	default:
		return "fatal"
	}
}

// CapacityError tags a failure caused by the request exceeding what the
// backend can hold (context window, memory).
type CapacityError struct{ Err error }

func (e *CapacityError) Error() string { return fmt.Sprintf("backend capacity exceeded: %v", e.Err) }
func (e *CapacityError) Unwrap() error { return e.Err }

// TransientError tags a failure that a later retry may clear.
type TransientError struct{ Err error }

func (e *TransientError) Error() string { return fmt.Sprintf("transient backend error: %v", e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

var capacityKeywords = []string{"context", "length", "memory", "too long", "exceeded"}
var transientKeywords = []string{"timeout", "busy", "connection", "reset", "refused"}

// Classify maps an error to its class. Tagged errors win; untyped errors
// fall back to keyword matching on the message, which is the only signal
// available for failures reported as plain strings by the backend.
func Classify(err error) ErrClass {
	if err == nil {
		return ClassFatal
	}
	var capErr *CapacityError
	if errors.As(err, &capErr) {
		return ClassCapacity
	}
	var transErr *TransientError
	if errors.As(err, &transErr) {
		return ClassTransient
	}

	msg := strings.ToLower(err.Error())
	for _, kw := range capacityKeywords {
		if strings.Contains(msg, kw) {
			return ClassCapacity
		}
	}
	for _, kw := range transientKeywords {
		if strings.Contains(msg, kw) {
			return ClassTransient
		}
	}
	return ClassFatal
}

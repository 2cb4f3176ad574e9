package translate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"doctrans/cache"
	"doctrans/internal/constants"
)

// segMarkerRe matches one segment marker in a batched response.
var segMarkerRe = regexp.MustCompile(`<<<SEG_(\d+)>>>`)

func segMarker(i int) string { return fmt.Sprintf("<<<SEG_%d>>>", i) }

// BatchTranslator accumulates text units and sends them to the backend in
// character-bounded batches under the segment marker protocol. Units are
// joined as
//
//	<<<SEG_0>>>
//	first text
//	<<<SEG_1>>>
//	second text
//
// and the response is split back on the markers. Batch size is measured in
// characters rather than units because the binding limit is the model's
// context window.
//
// Not safe for concurrent use; each pipeline run owns its own instance.
type BatchTranslator struct {
	backend    Backend
	store      *cache.TranslationCache
	sourceLang string
	targetLang string

	maxBatchChars int
	progress      func(done, total int)

	pending []pendingUnit
	results map[int]string
	nextIdx int
	done    int
}

type pendingUnit struct {
	text string
	idx  int
}

// BatchOption configures a BatchTranslator.
type BatchOption func(*BatchTranslator)

// WithCache attaches a persistent cache checked on Add and written through
// after each successful translation.
func WithCache(c *cache.TranslationCache) BatchOption {
	return func(t *BatchTranslator) { t.store = c }
}

// WithMaxBatchChars sets the batch character budget, clamped to the
// supported range.
func WithMaxBatchChars(n int) BatchOption {
	return func(t *BatchTranslator) {
		if n < constants.MinMaxBatchChars {
			n = constants.MinMaxBatchChars
		}
		if n > constants.MaxMaxBatchChars {
			n = constants.MaxMaxBatchChars
		}
		t.maxBatchChars = n
	}
}

// WithProgress registers a callback fired after every completed unit batch
// with (completed, added) unit counts.
func WithProgress(fn func(done, total int)) BatchOption {
	return func(t *BatchTranslator) { t.progress = fn }
}

// NewBatchTranslator builds a translator for one language pair.
func NewBatchTranslator(b Backend, sourceLang, targetLang string, opts ...BatchOption) *BatchTranslator {
	t := &BatchTranslator{
		backend:       b,
		sourceLang:    NormalizeLangCode(sourceLang),
		targetLang:    NormalizeLangCode(targetLang),
		maxBatchChars: constants.DefaultMaxBatchChars,
		results:       make(map[int]string),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Add queues one text unit and returns its slot index. When the pending
// batch would exceed the character budget it is flushed first, so Add can
// block on backend calls. Cache hits and blank units resolve immediately
// without queueing.
func (t *BatchTranslator) Add(ctx context.Context, text string) (int, error) {
	idx := t.nextIdx
	t.nextIdx++

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		// Whitespace-only input resolves to the empty string, not an echo of
		// the input; there is nothing to translate.
		t.results[idx] = ""
		t.done++
		return idx, nil
	}
	if t.store != nil {
		if hit, ok := t.store.Get(t.sourceLang, t.targetLang, trimmed); ok {
			t.results[idx] = hit
			t.done++
			return idx, nil
		}
	}

	unitCost := len([]rune(trimmed)) + len(segMarker(idx)) + 2
	if t.pendingChars()+unitCost > t.maxBatchChars && len(t.pending) > 0 {
		if err := t.Flush(ctx); err != nil {
			return idx, err
		}
	}
	t.pending = append(t.pending, pendingUnit{text: trimmed, idx: idx})
	return idx, nil
}

func (t *BatchTranslator) pendingChars() int {
	total := 0
	for _, u := range t.pending {
		total += len([]rune(u.text)) + len(segMarker(u.idx)) + 2
	}
	return total
}

// Get returns the translation for a slot index. Only valid after the flush
// covering that slot.
func (t *BatchTranslator) Get(idx int) (string, bool) {
	out, ok := t.results[idx]
	return out, ok
}

// Flush translates all pending units. A single pending unit skips the marker
// protocol entirely.
func (t *BatchTranslator) Flush(ctx context.Context) error {
	if len(t.pending) == 0 {
		return nil
	}
	batch := t.pending
	t.pending = nil

	if len(batch) == 1 {
		out, err := TranslateWithRecovery(ctx, t.backend, batch[0].text, t.sourceLang, t.targetLang)
		if err != nil {
			return fmt.Errorf("translating unit: %w", err)
		}
		t.accept(batch[0], out)
		t.reportProgress()
		return nil
	}

	payload := t.buildPayload(batch)
	response, err := t.backend.Translate(ctx, payload, t.sourceLang, t.targetLang)
	if err != nil {
		log.Warnf("batched call failed (%d units, class %s), falling back to per-unit: %v",
			len(batch), Classify(err), err)
		if err := t.translateIndividually(ctx, batch); err != nil {
			return err
		}
		t.reportProgress()
		return nil
	}

	parsed := parseSegments(response)
	recovered := 0
	for pos := range batch {
		if _, ok := parsed[pos]; ok {
			recovered++
		}
	}

	ratio := float64(recovered) / float64(len(batch))
	if ratio < constants.BatchAcceptRatio {
		log.Warnf("batched response recovered only %d/%d segments, retrying per-unit", recovered, len(batch))
		if err := t.translateIndividually(ctx, batch); err != nil {
			return err
		}
		t.reportProgress()
		return nil
	}

	var missing []pendingUnit
	for pos, unit := range batch {
		if out, ok := parsed[pos]; ok {
			t.accept(unit, out)
		} else {
			missing = append(missing, unit)
		}
	}
	if len(missing) > 0 {
		log.Infof("re-querying %d segments missing from batched response", len(missing))
		if err := t.translateIndividually(ctx, missing); err != nil {
			return err
		}
	}
	t.reportProgress()
	return nil
}

func (t *BatchTranslator) buildPayload(batch []pendingUnit) string {
	var sb strings.Builder
	for pos, unit := range batch {
		if pos > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(segMarker(pos))
		sb.WriteString("\n")
		sb.WriteString(unit.text)
	}
	return sb.String()
}

func (t *BatchTranslator) translateIndividually(ctx context.Context, units []pendingUnit) error {
	for _, unit := range units {
		out, err := TranslateWithRecovery(ctx, t.backend, unit.text, t.sourceLang, t.targetLang)
		if err != nil {
			return fmt.Errorf("translating unit %d: %w", unit.idx, err)
		}
		t.accept(unit, out)
	}
	return nil
}

// accept normalizes, records, and caches one finished unit.
func (t *BatchTranslator) accept(unit pendingUnit, translated string) {
	if NeedsScriptNormalization(t.targetLang) {
		translated = NormalizeTraditional(translated)
	}
	t.results[unit.idx] = translated
	t.done++
	if t.store != nil {
		t.store.Put(t.sourceLang, t.targetLang, unit.text, translated)
	}
}

func (t *BatchTranslator) reportProgress() {
	if t.progress != nil {
		t.progress(t.done, t.nextIdx)
	}
}

// TranslateAll is the convenience path for a de-duplicated text list: queue
// everything, flush, and return a source-to-translation map.
func (t *BatchTranslator) TranslateAll(ctx context.Context, texts []string) (map[string]string, error) {
	indices := make(map[string]int, len(texts))
	for _, text := range texts {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		if _, ok := indices[trimmed]; ok {
			continue
		}
		idx, err := t.Add(ctx, trimmed)
		if err != nil {
			return nil, err
		}
		indices[trimmed] = idx
	}
	if err := t.Flush(ctx); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(indices))
	for text, idx := range indices {
		if translated, ok := t.Get(idx); ok {
			out[text] = translated
		}
	}
	return out, nil
}

// parseSegments splits a batched response back into per-position texts. The
// content of a segment runs from the end of its marker to the start of the
// next marker. Repeated markers keep the first occurrence.
func parseSegments(response string) map[int]string {
	matches := segMarkerRe.FindAllStringSubmatchIndex(response, -1)
	out := make(map[int]string, len(matches))
	for i, m := range matches {
		var pos int
		if _, err := fmt.Sscanf(response[m[2]:m[3]], "%d", &pos); err != nil {
			continue
		}
		start := m[1]
		end := len(response)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		content := strings.TrimSpace(response[start:end])
		if content == "" {
			continue
		}
		if _, seen := out[pos]; seen {
			continue
		}
		out[pos] = content
	}
	return out
}

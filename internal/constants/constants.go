package constants

import "time"

// Character-based batching, sized for a ~128K token context window.
const (
	DefaultMaxBatchChars = 80000
	MinMaxBatchChars     = 10000
	MaxMaxBatchChars     = 100000
)

// BatchAcceptRatio is the share of segment markers that must be recovered
// from a batched response before the partial result is accepted and the
// missing slots are re-queried individually.
const BatchAcceptRatio = 0.8

// Document size limits, checked before the first translation call.
const (
	MaxSegments   = 10000
	MaxTextLength = 100000
)

// Cache sizing. EvictionBatch entries are deleted per eviction pass so
// writes are not paying a delete on every insert.
const (
	CacheMaxEntries    = 50000
	CacheEvictionBatch = 5000
)

// Extended retry waits for transient backend errors (timeout/busy/connection).
var TransientRetryWaits = []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second}

// MaxChunkChars is the hard per-slice limit when a capacity error forces
// chunked translation of a single unit.
const MaxChunkChars = 1500

// Layout rendering defaults (points).
const (
	HeaderFooterMarginPt = 50.0
	MaskMarginPt         = 0.5
	TableTolerancePt     = 5.0
	LineSpacing          = 1.15
)

// ScannedPageCharThreshold is the average extracted characters per page
// below which a document is flagged as having no usable text layer.
const ScannedPageCharThreshold = 20

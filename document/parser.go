package document

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"doctrans/internal/constants"
)

// Parser builds a TranslatableDocument from a source file.
type Parser interface {
	Parse(path string) (*TranslatableDocument, error)
	SupportedExtensions() []string
}

// SizeLimitError is raised before any translation call when a document is
// too large to complete, so backend quota is not burned on a lost cause.
type SizeLimitError struct {
	SegmentCount int
	TextLength   int
	MaxSegments  int
	MaxTextLen   int
	Limit        string // "segments" or "text_length"
}

func (e *SizeLimitError) Error() string {
	if e.Limit == "segments" {
		return fmt.Sprintf("document exceeds segment limit: %d > %d", e.SegmentCount, e.MaxSegments)
	}
	return fmt.Sprintf("document exceeds text length limit: %d > %d", e.TextLength, e.MaxTextLen)
}

// CheckSizeLimits validates a parsed document against the configured
// segment and total-text ceilings. Fatal for the whole document on failure.
func CheckSizeLimits(doc *TranslatableDocument, maxSegments, maxTextLen int) error {
	if maxSegments <= 0 {
		maxSegments = constants.MaxSegments
	}
	if maxTextLen <= 0 {
		maxTextLen = constants.MaxTextLength
	}
	segments := len(doc.TranslatableElements())
	textLen := doc.TotalTextLength()
	if segments > maxSegments {
		return &SizeLimitError{SegmentCount: segments, TextLength: textLen,
			MaxSegments: maxSegments, MaxTextLen: maxTextLen, Limit: "segments"}
	}
	if textLen > maxTextLen {
		return &SizeLimitError{SegmentCount: segments, TextLength: textLen,
			MaxSegments: maxSegments, MaxTextLen: maxTextLen, Limit: "text_length"}
	}
	return nil
}

// DetectSourceType sniffs the file content and maps it to a source type
// string ("pdf", ...). The extension is a fallback for formats the content
// sniffer reports generically (zip-based office containers).
func DetectSourceType(path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detecting file type: %w", err)
	}
	switch {
	case mtype.Is("application/pdf"):
		return "pdf", nil
	case mtype.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return "docx", nil
	case mtype.Is("application/vnd.openxmlformats-officedocument.presentationml.presentation"):
		return "pptx", nil
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "", fmt.Errorf("unsupported file type %s for %s", mtype.String(), path)
	}
	return ext, nil
}

// ParserFor returns the parser responsible for a source type.
func ParserFor(sourceType string, opts ParseOptions) (Parser, error) {
	switch sourceType {
	case "pdf":
		return NewPDFParser(opts), nil
	default:
		return nil, fmt.Errorf("no parser for source type %q", sourceType)
	}
}

// ParseOptions control element classification during parsing.
type ParseOptions struct {
	// SkipHeaderFooter marks header/footer elements shouldTranslate=false.
	// The elements are still emitted: renderers need them for fidelity.
	SkipHeaderFooter bool

	// HeaderFooterMarginPt is the page-edge band used for header/footer
	// classification. Zero means the default.
	HeaderFooterMarginPt float64

	// MinTextLength filters noise fragments shorter than this many runes.
	MinTextLength int
}

func (o ParseOptions) headerFooterMargin() float64 {
	if o.HeaderFooterMarginPt > 0 {
		return o.HeaderFooterMarginPt
	}
	return constants.HeaderFooterMarginPt
}

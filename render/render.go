// Package render places translated text back into the document layout.
// Inline mode interleaves translated blocks with the original element
// sequence; coordinate mode plans per-page redactions and text placements
// that a PDF writer executes.
package render

import (
	"github.com/sirupsen/logrus"

	"doctrans/document"
)

var log = logrus.New()

// Mode selects the layout strategy.
type Mode string

const (
	// ModeInline inserts each translation directly after its source element.
	ModeInline Mode = "inline"
	// ModeOverlay masks the original text and writes the translation in its
	// place on a copy of the page.
	ModeOverlay Mode = "overlay"
	// ModeSideBySide doubles the page width, original left, translation
	// right.
	ModeSideBySide Mode = "side_by_side"
)

// MissingPlaceholder is rendered where an element has no translation, so a
// dropped segment is visible in the output instead of silently blank.
// ASCII only, it must survive core-font output when no UTF-8 font is found.
const MissingPlaceholder = "[translation unavailable]"

// translationFor returns the element's translation or the visible
// placeholder. Elements excluded from translation keep their original text.
func translationFor(e *document.TranslatableElement) string {
	if !e.ShouldTranslate {
		return e.Content
	}
	if e.TranslatedContent != "" {
		return e.TranslatedContent
	}
	return MissingPlaceholder
}

// TextPlacement is one block of translated text to draw inside a box.
type TextPlacement struct {
	Text     string
	BBox     document.BoundingBox
	FontSize float64
	Lines    []string
	RTL      bool
	Style    *document.StyleInfo
}

// PagePlan is the drawing plan for one output page: redactions first, then
// placements, then the optional divider. The writer must keep that order or
// masks will cover fresh text.
type PagePlan struct {
	PageNum    int
	Width      float64
	Height     float64
	Redactions []document.BoundingBox
	Placements []TextPlacement
	Divider    bool // vertical line at the left/right boundary
	DividerX   float64
}

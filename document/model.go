// Package document defines the translatable document model: a flat list of
// bounding-box-addressed text elements extracted by a format-specific parser,
// shared by the batch translator and the layout renderers.
package document

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// ElementType classifies a document element.
type ElementType string

const (
	ElementText      ElementType = "text"
	ElementTitle     ElementType = "title"
	ElementHeader    ElementType = "header"
	ElementFooter    ElementType = "footer"
	ElementTableCell ElementType = "table_cell"
	ElementListItem  ElementType = "list_item"
	ElementCaption   ElementType = "caption"
	ElementFootnote  ElementType = "footnote"
)

// BoundingBox is an axis-aligned box in the internal coordinate system:
// top-left origin, x right, y down, unit points (1pt = 1/72 inch).
// Construct through NewBoundingBox or NormalizeBBox so x0<=x1 and y0<=y1 hold.
type BoundingBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// NewBoundingBox returns a box with the coordinates put in canonical order.
func NewBoundingBox(x0, y0, x1, y1 float64) BoundingBox {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return BoundingBox{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

func (b BoundingBox) Width() float64   { return b.X1 - b.X0 }
func (b BoundingBox) Height() float64  { return b.Y1 - b.Y0 }
func (b BoundingBox) CenterX() float64 { return (b.X0 + b.X1) / 2 }
func (b BoundingBox) CenterY() float64 { return (b.Y0 + b.Y1) / 2 }

// StyleInfo carries the text style captured from the source, when available.
type StyleInfo struct {
	FontName string  `json:"font_name,omitempty"`
	FontSize float64 `json:"font_size,omitempty"`
	Bold     bool    `json:"bold,omitempty"`
	Italic   bool    `json:"italic,omitempty"`
	Color    string  `json:"color,omitempty"` // hex, e.g. "#1A1A1A"
}

// TranslatableElement is one extracted text fragment. Elements are created
// once during parsing; TranslatedContent is set once after translation and
// the element is not mutated afterward.
type TranslatableElement struct {
	ID                string
	Content           string
	Type              ElementType
	PageNum           int // 1-based
	BBox              *BoundingBox
	Style             *StyleInfo
	ShouldTranslate   bool
	TranslatedContent string
	Metadata          map[string]any
}

// PageInfo describes one physical page or slide. Flow documents without page
// boundaries get a single synthetic page.
type PageInfo struct {
	PageNum  int
	Width    float64
	Height   float64
	Rotation int // 0, 90, 180, 270
}

// Metadata holds document-level properties.
type Metadata struct {
	Title        string
	Author       string
	Subject      string
	Creator      string
	Producer     string
	CreationDate string
	PageCount    int

	// HasTextLayer is false when the average extracted characters per page
	// falls below the scanned-page threshold, i.e. the source is likely an
	// image-only scan.
	HasTextLayer bool
}

// TranslatableDocument is the aggregate root. It is owned by the pipeline
// run that parsed it and is never shared across concurrent translations.
type TranslatableDocument struct {
	SourcePath string
	SourceType string
	Elements   []*TranslatableElement
	Pages      []PageInfo
	Metadata   Metadata
}

// TranslatableElements returns the elements marked for translation.
func (d *TranslatableDocument) TranslatableElements() []*TranslatableElement {
	var out []*TranslatableElement
	for _, e := range d.Elements {
		if e.ShouldTranslate {
			out = append(out, e)
		}
	}
	return out
}

// ElementsByPage groups all elements by 1-based page number.
func (d *TranslatableDocument) ElementsByPage() map[int][]*TranslatableElement {
	out := make(map[int][]*TranslatableElement)
	for _, e := range d.Elements {
		out[e.PageNum] = append(out[e.PageNum], e)
	}
	return out
}

// ElementsInReadingOrder returns a copy of the element list sorted
// top-to-bottom, left-to-right. The y coordinate is rounded to a coarse
// bucket so fragments of one visual line sort by x rather than by sub-point
// y jitter.
func (d *TranslatableDocument) ElementsInReadingOrder() []*TranslatableElement {
	out := make([]*TranslatableElement, len(d.Elements))
	copy(out, d.Elements)
	sort.SliceStable(out, func(i, j int) bool {
		yi, xi := readingKey(out[i])
		yj, xj := readingKey(out[j])
		if out[i].PageNum != out[j].PageNum {
			return out[i].PageNum < out[j].PageNum
		}
		if yi != yj {
			return yi < yj
		}
		return xi < xj
	})
	return out
}

func readingKey(e *TranslatableElement) (float64, float64) {
	if e.BBox == nil {
		return 0, 0
	}
	return roundToBucket(e.BBox.Y0), e.BBox.X0
}

// UniqueTexts returns the de-duplicated trimmed contents of all translatable
// elements, in first-seen order.
func (d *TranslatableDocument) UniqueTexts() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range d.TranslatableElements() {
		text := strings.TrimSpace(e.Content)
		if text == "" {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	return out
}

// TotalTextLength sums the character count of all translatable contents.
func (d *TranslatableDocument) TotalTextLength() int {
	total := 0
	for _, e := range d.TranslatableElements() {
		total += len([]rune(strings.TrimSpace(e.Content)))
	}
	return total
}

// ApplyTranslations fills TranslatedContent on every translatable element
// whose trimmed content has an entry in the map.
func (d *TranslatableDocument) ApplyTranslations(translations map[string]string) {
	for _, e := range d.Elements {
		if !e.ShouldTranslate {
			continue
		}
		if t, ok := translations[strings.TrimSpace(e.Content)]; ok {
			e.TranslatedContent = t
		}
	}
}

// StructuralKey builds the dedup key for a structural node: content hash plus
// a truncated prefix, so identical repeated nodes collapse while hash
// collisions stay readable in logs.
func StructuralKey(content string) string {
	sum := sha256.Sum256([]byte(content))
	prefix := content
	if len(prefix) > 32 {
		prefix = prefix[:32]
	}
	return hex.EncodeToString(sum[:8]) + "|" + prefix
}

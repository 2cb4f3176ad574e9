package render

import (
	"strings"

	"doctrans/document"
)

// InsertMarker prefixes every block this renderer inserts. A zero-width
// space never occurs at the start of extracted document text, so a re-run
// can tell its own insertions from source content and update them in place
// instead of inserting duplicates.
const InsertMarker = "\u200b"

// InlineRenderer interleaves translated blocks with the original element
// sequence, bilingual-reader style.
type InlineRenderer struct{}

// IsInsertedBlock reports whether an element was produced by a previous
// inline render.
func IsInsertedBlock(e *document.TranslatableElement) bool {
	return strings.HasPrefix(e.Content, InsertMarker)
}

// Render returns a new element sequence with a translated block after every
// translated element.
func (r *InlineRenderer) Render(doc *document.TranslatableDocument) []*document.TranslatableElement {
	return r.RenderSequence(doc.ElementsInReadingOrder())
}

// RenderSequence is Render over a raw element sequence. Running it on its own
// output refreshes the inserted blocks rather than stacking another copy.
func (r *InlineRenderer) RenderSequence(elements []*document.TranslatableElement) []*document.TranslatableElement {
	var out []*document.TranslatableElement

	for i := 0; i < len(elements); i++ {
		e := elements[i]
		if IsInsertedBlock(e) {
			// Stale insertion from an earlier run; its source element was
			// handled on the previous iteration.
			continue
		}
		out = append(out, e)
		if !e.ShouldTranslate {
			continue
		}

		inserted := &document.TranslatableElement{
			ID:      e.ID + "_translated",
			Content: InsertMarker + translationFor(e),
			Type:    e.Type,
			PageNum: e.PageNum,
			BBox:    e.BBox,
			Style:   e.Style,
		}
		out = append(out, inserted)
	}
	return out
}

// SerializeText renders an inline element sequence as plain text, original
// and translation on alternating lines.
func SerializeText(elements []*document.TranslatableElement) string {
	var sb strings.Builder
	for _, e := range elements {
		sb.WriteString(strings.TrimPrefix(e.Content, InsertMarker))
		sb.WriteString("\n")
	}
	return sb.String()
}

// SerializeMarkdown renders an inline element sequence as markdown. Titles
// become headings, inserted translations are emphasized so the two language
// layers stay visually distinct.
func SerializeMarkdown(elements []*document.TranslatableElement) string {
	var sb strings.Builder
	lastPage := 0
	for _, e := range elements {
		if e.PageNum != lastPage && lastPage != 0 {
			sb.WriteString("\n---\n\n")
		}
		lastPage = e.PageNum

		text := strings.TrimPrefix(e.Content, InsertMarker)
		switch {
		case IsInsertedBlock(e):
			sb.WriteString("*" + text + "*\n\n")
		case e.Type == document.ElementTitle:
			sb.WriteString("# " + text + "\n\n")
		case e.Type == document.ElementHeader || e.Type == document.ElementFooter:
			sb.WriteString("> " + text + "\n\n")
		default:
			sb.WriteString(text + "\n\n")
		}
	}
	return sb.String()
}

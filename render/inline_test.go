package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctrans/document"
)

func element(id, content, translated string, page int) *document.TranslatableElement {
	return &document.TranslatableElement{
		ID:                id,
		Content:           content,
		Type:              document.ElementText,
		PageNum:           page,
		BBox:              &document.BoundingBox{X0: 10, Y0: float64(page * 100), X1: 200, Y1: float64(page*100 + 20)},
		ShouldTranslate:   true,
		TranslatedContent: translated,
	}
}

func TestInlineRenderInsertsAfterEachElement(t *testing.T) {
	r := &InlineRenderer{}
	out := r.RenderSequence([]*document.TranslatableElement{
		element("a", "Hello", "Bonjour", 1),
		element("b", "World", "Monde", 1),
	})

	require.Len(t, out, 4)
	assert.Equal(t, "Hello", out[0].Content)
	assert.Equal(t, InsertMarker+"Bonjour", out[1].Content)
	assert.Equal(t, "World", out[2].Content)
	assert.Equal(t, InsertMarker+"Monde", out[3].Content)
}

func TestInlineRenderIsIdempotent(t *testing.T) {
	r := &InlineRenderer{}
	elements := []*document.TranslatableElement{
		element("a", "Hello", "Bonjour", 1),
		element("b", "World", "Monde", 1),
	}

	first := r.RenderSequence(elements)
	second := r.RenderSequence(first)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Content, second[i].Content)
	}
}

func TestInlineRerunRefreshesStaleTranslations(t *testing.T) {
	r := &InlineRenderer{}
	src := element("a", "Hello", "Bonjour", 1)
	first := r.RenderSequence([]*document.TranslatableElement{src})
	require.Len(t, first, 2)

	src.TranslatedContent = "Salut"
	second := r.RenderSequence(first)
	require.Len(t, second, 2)
	assert.Equal(t, InsertMarker+"Salut", second[1].Content)
}

func TestInlineSkipsExcludedElements(t *testing.T) {
	skip := element("f", "Page 1 of 9", "", 1)
	skip.ShouldTranslate = false

	r := &InlineRenderer{}
	out := r.RenderSequence([]*document.TranslatableElement{skip})
	require.Len(t, out, 1)
}

func TestInlineMissingTranslationGetsPlaceholder(t *testing.T) {
	r := &InlineRenderer{}
	out := r.RenderSequence([]*document.TranslatableElement{
		element("a", "Hello", "", 1),
	})
	require.Len(t, out, 2)
	assert.Equal(t, InsertMarker+MissingPlaceholder, out[1].Content)
}

func TestSerializeMarkdown(t *testing.T) {
	title := element("t", "The Title", "Le Titre", 1)
	title.Type = document.ElementTitle
	body := element("b", "Body text.", "Texte du corps.", 2)

	r := &InlineRenderer{}
	md := SerializeMarkdown(r.RenderSequence([]*document.TranslatableElement{title, body}))

	assert.Contains(t, md, "# The Title")
	assert.Contains(t, md, "*Le Titre*")
	assert.Contains(t, md, "Body text.")
	assert.Contains(t, md, "---", "page break between pages")
	assert.NotContains(t, md, InsertMarker)
}

func TestSerializeTextStripsMarkers(t *testing.T) {
	r := &InlineRenderer{}
	out := SerializeText(r.RenderSequence([]*document.TranslatableElement{
		element("a", "Hello", "Bonjour", 1),
	}))
	assert.Equal(t, "Hello\nBonjour\n", out)
	assert.False(t, strings.Contains(out, InsertMarker))
}

package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctrans/document"
	"doctrans/internal/constants"
)

func overlayDoc() *document.TranslatableDocument {
	hello := element("hello", "Hello", "Bonjour", 1)
	hello.BBox = &document.BoundingBox{X0: 72, Y0: 42, X1: 540, Y1: 92}
	world := element("world", "World", "Monde", 1)
	world.BBox = &document.BoundingBox{X0: 72, Y0: 120, X1: 300, Y1: 140}
	footer := element("footer", "Page 1", "", 1)
	footer.ShouldTranslate = false

	return &document.TranslatableDocument{
		SourceType: "pdf",
		Elements:   []*document.TranslatableElement{hello, world, footer},
		Pages:      []document.PageInfo{{PageNum: 1, Width: 612, Height: 792}},
	}
}

func TestOverlayPlanMasksAndPlaces(t *testing.T) {
	p, err := NewPlanner(PlannerOptions{Mode: ModeOverlay, TargetLang: "fr"})
	require.NoError(t, err)

	plans, err := p.Plan(overlayDoc())
	require.NoError(t, err)
	require.Len(t, plans, 1)

	plan := plans[0]
	assert.Equal(t, 612.0, plan.Width)
	assert.Equal(t, 792.0, plan.Height)
	assert.False(t, plan.Divider)

	// Two translated elements, one mask and one placement each; the
	// excluded footer contributes nothing.
	require.Len(t, plan.Redactions, 2)
	require.Len(t, plan.Placements, 2)
	assert.Equal(t, "Bonjour", plan.Placements[0].Text)
	assert.Equal(t, "Monde", plan.Placements[1].Text)

	// Without a quad finder the mask is the element box shrunk by the
	// doubled margin.
	margin := constants.MaskMarginPt * 2
	assert.Equal(t, 72.0+margin, plan.Redactions[0].X0)
	assert.Equal(t, 42.0+margin, plan.Redactions[0].Y0)
	assert.Equal(t, 540.0-margin, plan.Redactions[0].X1)
	assert.Equal(t, 92.0-margin, plan.Redactions[0].Y1)
}

type stubQuads struct{ quads []document.BoundingBox }

func (s stubQuads) FindQuads(int, string, document.BoundingBox, float64) []document.BoundingBox {
	return s.quads
}

func TestOverlayUsesQuadFinderWhenAvailable(t *testing.T) {
	quad := document.BoundingBox{X0: 100, Y0: 50, X1: 200, Y1: 60}
	p, err := NewPlanner(PlannerOptions{
		Mode:       ModeOverlay,
		TargetLang: "fr",
		Quads:      stubQuads{quads: []document.BoundingBox{quad}},
	})
	require.NoError(t, err)

	plans, err := p.Plan(overlayDoc())
	require.NoError(t, err)

	// Quads shrink by the single margin, not the doubled fallback one.
	r := plans[0].Redactions[0]
	assert.Equal(t, quad.X0+constants.MaskMarginPt, r.X0)
	assert.Equal(t, quad.Y1-constants.MaskMarginPt, r.Y1)
}

func TestSideBySidePlanOffsetsRightHalf(t *testing.T) {
	p, err := NewPlanner(PlannerOptions{Mode: ModeSideBySide, TargetLang: "fr"})
	require.NoError(t, err)

	plans, err := p.Plan(overlayDoc())
	require.NoError(t, err)
	require.Len(t, plans, 1)

	plan := plans[0]
	assert.Equal(t, 1224.0, plan.Width, "page width doubles")
	assert.True(t, plan.Divider)
	assert.Equal(t, 612.0, plan.DividerX)
	assert.Empty(t, plan.Redactions, "side-by-side never masks the original")

	require.Len(t, plan.Placements, 2)
	assert.Equal(t, 72.0+612.0, plan.Placements[0].BBox.X0)
	assert.Equal(t, 540.0+612.0, plan.Placements[0].BBox.X1)
	assert.Equal(t, 42.0, plan.Placements[0].BBox.Y0, "y is unchanged")
}

func TestOverlayMissingTranslationPlacesPlaceholder(t *testing.T) {
	doc := overlayDoc()
	doc.Elements[0].TranslatedContent = ""

	p, err := NewPlanner(PlannerOptions{Mode: ModeOverlay, TargetLang: "fr"})
	require.NoError(t, err)
	plans, err := p.Plan(doc)
	require.NoError(t, err)

	assert.Equal(t, MissingPlaceholder, plans[0].Placements[0].Text)
}

func TestRTLPlacements(t *testing.T) {
	p, err := NewPlanner(PlannerOptions{Mode: ModeOverlay, TargetLang: "ar"})
	require.NoError(t, err)
	plans, err := p.Plan(overlayDoc())
	require.NoError(t, err)
	for _, pl := range plans[0].Placements {
		assert.True(t, pl.RTL)
	}
}

func TestPlannerRejectsInlineMode(t *testing.T) {
	_, err := NewPlanner(PlannerOptions{Mode: ModeInline, TargetLang: "fr"})
	assert.Error(t, err)
}

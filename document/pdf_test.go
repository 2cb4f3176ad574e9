package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectTableRegionsClustersRulingLines(t *testing.T) {
	// A 3x2 grid drawn as thin rects: two horizontal rules and three
	// vertical rules, all touching.
	rects := []BoundingBox{
		{X0: 100, Y0: 200, X1: 300, Y1: 201},
		{X0: 100, Y0: 250, X1: 300, Y1: 251},
		{X0: 100, Y0: 200, X1: 101, Y1: 251},
		{X0: 200, Y0: 200, X1: 201, Y1: 251},
		{X0: 299, Y0: 200, X1: 300, Y1: 251},
		// A lone underline elsewhere on the page is not a table.
		{X0: 400, Y0: 500, X1: 500, Y1: 501},
	}
	tables := detectTableRegions(rects)
	require.Len(t, tables, 1)
	assert.InDelta(t, 100, tables[0].X0, 0.01)
	assert.InDelta(t, 300, tables[0].X1, 0.01)
	assert.InDelta(t, 200, tables[0].Y0, 0.01)
	assert.InDelta(t, 251, tables[0].Y1, 0.01)
}

func TestDetectTableRegionsIgnoresSparseRects(t *testing.T) {
	rects := []BoundingBox{
		{X0: 10, Y0: 10, X1: 100, Y1: 11},
		{X0: 10, Y0: 700, X1: 100, Y1: 701},
	}
	assert.Empty(t, detectTableRegions(rects))
}

func TestTagTableCells(t *testing.T) {
	inside := &TranslatableElement{
		ID: "in", Type: ElementText, PageNum: 1,
		BBox:     &BoundingBox{X0: 110, Y0: 210, X1: 190, Y1: 230},
		Metadata: map[string]any{},
	}
	nearEdge := &TranslatableElement{
		ID: "edge", Type: ElementText, PageNum: 1,
		BBox:     &BoundingBox{X0: 98, Y0: 210, X1: 190, Y1: 230}, // 2pt overhang
		Metadata: map[string]any{},
	}
	outside := &TranslatableElement{
		ID: "out", Type: ElementText, PageNum: 1,
		BBox:     &BoundingBox{X0: 400, Y0: 400, X1: 500, Y1: 420},
		Metadata: map[string]any{},
	}
	otherPage := &TranslatableElement{
		ID: "p2", Type: ElementText, PageNum: 2,
		BBox:     &BoundingBox{X0: 110, Y0: 210, X1: 190, Y1: 230},
		Metadata: map[string]any{},
	}

	table := BoundingBox{X0: 100, Y0: 200, X1: 300, Y1: 260}
	tagTableCells([]*TranslatableElement{inside, nearEdge, outside, otherPage}, 1, []BoundingBox{table})

	assert.Equal(t, ElementTableCell, inside.Type)
	assert.Equal(t, ElementTableCell, nearEdge.Type, "5pt tolerance covers slight overhang")
	assert.Equal(t, ElementText, outside.Type)
	assert.Equal(t, ElementText, otherPage.Type, "other pages untouched")
}

func TestSortByReadingOrder(t *testing.T) {
	elements := []*TranslatableElement{
		{ID: "low", PageNum: 1, BBox: &BoundingBox{X0: 50, Y0: 400, X1: 200, Y1: 420}},
		{ID: "right", PageNum: 1, BBox: &BoundingBox{X0: 300, Y0: 101, X1: 400, Y1: 120}},
		{ID: "left", PageNum: 1, BBox: &BoundingBox{X0: 50, Y0: 99, X1: 200, Y1: 118}},
	}
	sorted := sortByReadingOrder(elements)
	assert.Equal(t, "left", sorted[0].ID)
	assert.Equal(t, "right", sorted[1].ID)
	assert.Equal(t, "low", sorted[2].ID)
}

func TestParserForUnknownType(t *testing.T) {
	_, err := ParserFor("xlsx", ParseOptions{})
	assert.Error(t, err)

	p, err := ParserFor("pdf", ParseOptions{})
	require.NoError(t, err)
	assert.Contains(t, p.SupportedExtensions(), ".pdf")
}

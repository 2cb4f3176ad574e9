package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBBoxFlipsPDFCoordinates(t *testing.T) {
	// A box 700..750pt above the bottom of a 792pt page sits 42..92pt from
	// the top in the internal system.
	b := NormalizeBBox(72, 700, 540, 750, 792, true)
	assert.Equal(t, 72.0, b.X0)
	assert.Equal(t, 42.0, b.Y0)
	assert.Equal(t, 540.0, b.X1)
	assert.Equal(t, 92.0, b.Y1)
}

func TestNormalizeBBoxNoFlipForInternalCoordinates(t *testing.T) {
	b := NormalizeBBox(72, 42, 540, 92, 792, false)
	assert.Equal(t, BoundingBox{X0: 72, Y0: 42, X1: 540, Y1: 92}, b)
}

func TestNormalizeBBoxFlipSwitchesCoordinateSystems(t *testing.T) {
	// Flipping an already-internal box lands back in PDF coordinates, which
	// is the wrong system for everything downstream. Conversion therefore
	// happens exactly once, at ingest.
	once := NormalizeBBox(0, 100, 10, 200, 792, true)
	assert.NotEqual(t, BoundingBox{X0: 0, Y0: 100, X1: 10, Y1: 200}, once)
	twice := NormalizeBBox(once.X0, once.Y0, once.X1, once.Y1, 792, true)
	assert.Equal(t, BoundingBox{X0: 0, Y0: 100, X1: 10, Y1: 200}, twice)
}

func TestNewBoundingBoxCanonicalOrder(t *testing.T) {
	b := NewBoundingBox(540, 92, 72, 42)
	assert.Equal(t, BoundingBox{X0: 72, Y0: 42, X1: 540, Y1: 92}, b)
}

func TestIoU(t *testing.T) {
	a := BoundingBox{X0: 0, Y0: 0, X1: 10, Y1: 10}
	assert.InDelta(t, 1.0, IoU(a, a), 1e-9)

	b := BoundingBox{X0: 5, Y0: 0, X1: 15, Y1: 10}
	assert.InDelta(t, 50.0/150.0, IoU(a, b), 1e-9)

	c := BoundingBox{X0: 20, Y0: 20, X1: 30, Y1: 30}
	assert.Zero(t, IoU(a, c))
}

func TestInsideWithTolerance(t *testing.T) {
	outer := BoundingBox{X0: 10, Y0: 10, X1: 100, Y1: 100}
	assert.True(t, Inside(BoundingBox{X0: 20, Y0: 20, X1: 90, Y1: 90}, outer, 0))
	assert.True(t, Inside(BoundingBox{X0: 7, Y0: 10, X1: 100, Y1: 103}, outer, 5))
	assert.False(t, Inside(BoundingBox{X0: 0, Y0: 10, X1: 100, Y1: 100}, outer, 5))
}

func TestClassifyRegion(t *testing.T) {
	const pageHeight, margin = 792.0, 50.0
	assert.Equal(t, RegionHeader, ClassifyRegion(BoundingBox{Y0: 20, Y1: 35}, pageHeight, margin))
	assert.Equal(t, RegionFooter, ClassifyRegion(BoundingBox{Y0: 755, Y1: 770}, pageHeight, margin))
	assert.Equal(t, RegionBody, ClassifyRegion(BoundingBox{Y0: 300, Y1: 320}, pageHeight, margin))
}

func TestReadingOrder(t *testing.T) {
	// Three boxes: one low on the page, then two on the same visual line
	// with sub-bucket y jitter, right before left.
	boxes := []BoundingBox{
		{X0: 50, Y0: 400, X1: 200, Y1: 420},
		{X0: 300, Y0: 101, X1: 400, Y1: 120},
		{X0: 50, Y0: 99, X1: 200, Y1: 118},
	}
	order := ReadingOrder(boxes)
	require.Equal(t, []int{2, 1, 0}, order)
}

func TestMergeBBoxes(t *testing.T) {
	merged := MergeBBoxes([]BoundingBox{
		{X0: 10, Y0: 10, X1: 50, Y1: 20},
		{X0: 5, Y0: 15, X1: 40, Y1: 60},
	})
	assert.Equal(t, BoundingBox{X0: 5, Y0: 10, X1: 50, Y1: 60}, merged)
	assert.Equal(t, BoundingBox{}, MergeBBoxes(nil))
}

package document

import "math"

// NormalizeBBox converts raw (x0,y0,x1,y1) coordinates into the internal
// top-left-origin, y-down system. When fromPDFCoords is true the input is in
// PDF page coordinates (bottom-left origin, y up) and the y axis is flipped
// against pageHeight. The flip must run exactly once per ingested box:
// applying it twice is not a round trip back to the input, so parsers convert
// at extraction time and everything downstream works in internal coordinates.
func NormalizeBBox(x0, y0, x1, y1, pageHeight float64, fromPDFCoords bool) BoundingBox {
	if fromPDFCoords {
		y0, y1 = pageHeight-y1, pageHeight-y0
	}
	return NewBoundingBox(x0, y0, x1, y1)
}

// IoU returns the intersection-over-union of two boxes, 0 when disjoint.
func IoU(a, b BoundingBox) float64 {
	x0 := math.Max(a.X0, b.X0)
	y0 := math.Max(a.Y0, b.Y0)
	x1 := math.Min(a.X1, b.X1)
	y1 := math.Min(a.Y1, b.Y1)
	if x0 >= x1 || y0 >= y1 {
		return 0
	}
	inter := (x1 - x0) * (y1 - y0)
	union := a.Width()*a.Height() + b.Width()*b.Height() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Inside reports whether inner is contained in outer, allowing the given
// overhang in points on every edge.
func Inside(inner, outer BoundingBox, tolerance float64) bool {
	return inner.X0 >= outer.X0-tolerance &&
		inner.Y0 >= outer.Y0-tolerance &&
		inner.X1 <= outer.X1+tolerance &&
		inner.Y1 <= outer.Y1+tolerance
}

// MergeBBoxes returns the smallest box covering all inputs.
// Returns the zero box for an empty slice.
func MergeBBoxes(boxes []BoundingBox) BoundingBox {
	if len(boxes) == 0 {
		return BoundingBox{}
	}
	out := boxes[0]
	for _, b := range boxes[1:] {
		out.X0 = math.Min(out.X0, b.X0)
		out.Y0 = math.Min(out.Y0, b.Y0)
		out.X1 = math.Max(out.X1, b.X1)
		out.Y1 = math.Max(out.Y1, b.Y1)
	}
	return out
}

// PageRegion names the vertical band a box falls into.
type PageRegion string

const (
	RegionHeader PageRegion = "header"
	RegionFooter PageRegion = "footer"
	RegionBody   PageRegion = "body"
)

// ClassifyRegion returns the page region for a box: header when it starts
// inside the top margin, footer when it ends inside the bottom margin.
func ClassifyRegion(b BoundingBox, pageHeight, marginPt float64) PageRegion {
	if b.Y0 < marginPt {
		return RegionHeader
	}
	if b.Y1 > pageHeight-marginPt {
		return RegionFooter
	}
	return RegionBody
}

// roundToBucket snaps y to a 10pt grid for reading-order grouping.
func roundToBucket(y float64) float64 {
	return math.Round(y/10) * 10
}

// ReadingOrder returns the indices of boxes sorted top-to-bottom then
// left-to-right, using the same bucketed-y key as the document view.
func ReadingOrder(boxes []BoundingBox) []int {
	idx := make([]int, len(boxes))
	for i := range idx {
		idx[i] = i
	}
	// insertion sort keeps this allocation-free for the small per-page sets
	// we feed it
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0; j-- {
			a, b := boxes[idx[j-1]], boxes[idx[j]]
			ka, kb := roundToBucket(a.Y0), roundToBucket(b.Y0)
			if ka < kb || (ka == kb && a.X0 <= b.X0) {
				break
			}
			idx[j-1], idx[j] = idx[j], idx[j-1]
		}
	}
	return idx
}

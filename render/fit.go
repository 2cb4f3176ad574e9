package render

import (
	"math"
	"strings"
	"unicode"

	"doctrans/internal/constants"
)

// FitResult is the outcome of shrinking text into a box.
type FitResult struct {
	FontSize float64
	Lines    []string
	// Overflow is set when even the minimum size could not hold the text.
	// The caller renders anyway; clipped output beats missing output.
	Overflow bool
}

// FitTextToBox finds the largest font size within spec that lets text wrap
// into the box, shrinking geometrically from the starting size. The search
// is bounded: the shrink factor is below one, so the size either reaches a
// fitting value or hits the floor in a fixed number of steps.
func FitTextToBox(text string, box boxDims, spec FontSizeSpec, measure MeasureFunc) FitResult {
	if measure == nil {
		measure = HeuristicMeasure
	}
	size := math.Min(spec.Max, box.Height*spec.HeightRatio)
	if size < spec.Min {
		size = spec.Min
	}

	const maxIterations = 50
	for i := 0; i < maxIterations; i++ {
		lines := WrapText(text, box.Width, size, measure)
		if fits(lines, box, size, measure) {
			return FitResult{FontSize: size, Lines: lines}
		}
		next := size * spec.ShrinkFactor
		if next < spec.Min {
			break
		}
		size = next
	}

	size = spec.Min
	lines := WrapText(text, box.Width, size, measure)
	return FitResult{FontSize: size, Lines: lines, Overflow: !fits(lines, box, size, measure)}
}

type boxDims struct {
	Width  float64
	Height float64
}

func fits(lines []string, box boxDims, size float64, measure MeasureFunc) bool {
	if float64(len(lines))*size*constants.LineSpacing > box.Height {
		return false
	}
	for _, line := range lines {
		if measure(line, size) > box.Width {
			return false
		}
	}
	return true
}

// WrapText breaks text into lines no wider than maxWidth. Breaks happen at
// spaces when possible; words wider than the box, and spaceless CJK text,
// break between any two runes.
func WrapText(text string, maxWidth, fontSize float64, measure MeasureFunc) []string {
	if measure == nil {
		measure = HeuristicMeasure
	}

	var out []string
	for _, paragraph := range strings.Split(text, "\n") {
		out = append(out, wrapLine(paragraph, maxWidth, fontSize, measure)...)
	}
	if len(out) == 0 {
		out = []string{""}
	}
	return out
}

func wrapLine(text string, maxWidth, fontSize float64, measure MeasureFunc) []string {
	if strings.TrimSpace(text) == "" {
		return []string{""}
	}

	var (
		lines     []string
		current   []rune
		lastSpace = -1 // index into current of the most recent break point
	)
	flush := func(upTo int) {
		lines = append(lines, strings.TrimRight(string(current[:upTo]), " "))
		rest := current[upTo:]
		for len(rest) > 0 && rest[0] == ' ' {
			rest = rest[1:]
		}
		current = append([]rune(nil), rest...)
		lastSpace = -1
		for i, r := range current {
			if unicode.IsSpace(r) {
				lastSpace = i
			}
		}
	}

	for _, r := range text {
		current = append(current, r)
		if unicode.IsSpace(r) {
			lastSpace = len(current) - 1
		}
		if measure(string(current), fontSize) <= maxWidth {
			continue
		}
		if len(current) == 1 {
			continue // a single rune wider than the box cannot be split
		}
		if lastSpace > 0 {
			flush(lastSpace)
		} else {
			flush(len(current) - 1)
		}
	}
	if len(current) > 0 {
		lines = append(lines, strings.TrimRight(string(current), " "))
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

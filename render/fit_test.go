package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapTextBreaksAtSpaces(t *testing.T) {
	// Heuristic: latin runes are 0.5em, so at size 10 each rune is 5pt and
	// a 100pt box holds 20 runes per line.
	lines := WrapText("aaaa bbbb cccc dddd eeee", 100, 10, nil)
	for _, line := range lines {
		assert.LessOrEqual(t, HeuristicMeasure(line, 10), 100.0)
		assert.False(t, strings.HasSuffix(line, " "))
	}
	assert.Equal(t, strings.ReplaceAll("aaaa bbbb cccc dddd eeee", " ", ""),
		strings.ReplaceAll(strings.Join(lines, ""), " ", ""))
}

func TestWrapTextBreaksOverlongWordMidRune(t *testing.T) {
	lines := WrapText(strings.Repeat("x", 50), 100, 10, nil)
	require.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.LessOrEqual(t, HeuristicMeasure(line, 10), 100.0)
	}
}

func TestWrapTextCJKBreaksAnywhere(t *testing.T) {
	// CJK runes are a full em wide, so a 100pt box at size 10 holds 10.
	lines := WrapText(strings.Repeat("字", 25), 100, 10, nil)
	require.Len(t, lines, 3)
	assert.Equal(t, 10, len([]rune(lines[0])))
}

func TestFitTextShrinksUntilItFits(t *testing.T) {
	spec := FontSizeSpec{Max: 12, Min: 4, HeightRatio: 0.75, ShrinkFactor: 0.88}
	text := strings.Repeat("some words here ", 20)

	fit := FitTextToBox(text, boxDims{Width: 200, Height: 50}, spec, nil)
	assert.False(t, fit.Overflow)
	assert.GreaterOrEqual(t, fit.FontSize, spec.Min)
	assert.LessOrEqual(t, fit.FontSize, spec.Max)

	// The result actually fits.
	totalHeight := float64(len(fit.Lines)) * fit.FontSize * 1.15
	assert.LessOrEqual(t, totalHeight, 50.0)
	for _, line := range fit.Lines {
		assert.LessOrEqual(t, HeuristicMeasure(line, fit.FontSize), 200.0)
	}
}

func TestFitTextStopsAtMinimumAndFlagsOverflow(t *testing.T) {
	spec := FontSizeSpec{Max: 12, Min: 6, HeightRatio: 0.75, ShrinkFactor: 0.88}
	text := strings.Repeat("far too much text for this tiny box ", 50)

	fit := FitTextToBox(text, boxDims{Width: 50, Height: 20}, spec, nil)
	assert.True(t, fit.Overflow)
	assert.Equal(t, spec.Min, fit.FontSize, "size never goes below the floor")
	assert.NotEmpty(t, fit.Lines, "overflowing text still renders")
}

func TestFitShortTextKeepsMaxSize(t *testing.T) {
	spec := FontSizeSpec{Max: 11, Min: 4, HeightRatio: 0.75, ShrinkFactor: 0.88}
	fit := FitTextToBox("ok", boxDims{Width: 300, Height: 40}, spec, nil)
	assert.False(t, fit.Overflow)
	assert.InDelta(t, 11.0, fit.FontSize, 1e-9)
	assert.Equal(t, []string{"ok"}, fit.Lines)
}

func TestFontSpecFor(t *testing.T) {
	assert.Equal(t, 12.0, FontSpecFor("ja").Max)
	assert.Equal(t, 6.0, FontSpecFor("zh-TW").Min)
	assert.Equal(t, 13.0, FontSpecFor("ar").Max)
	assert.Equal(t, defaultFontSpec, FontSpecFor("fr"))
	assert.Equal(t, defaultFontSpec, FontSpecFor("unknown"))
}

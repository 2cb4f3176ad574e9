package render

import (
	"os"
	"path/filepath"

	"doctrans/translate"
)

// FontSizeSpec bounds the shrink-to-fit search for one script family.
// Dense scripts start larger and stop shrinking earlier because their glyphs
// become unreadable sooner.
type FontSizeSpec struct {
	Max          float64
	Min          float64
	HeightRatio  float64 // initial size as a fraction of the box height
	ShrinkFactor float64 // multiplied into the size on each failed fit
}

var defaultFontSpec = FontSizeSpec{Max: 11, Min: 4, HeightRatio: 0.75, ShrinkFactor: 0.88}

var fontSpecs = map[string]FontSizeSpec{
	"zh-cn": {Max: 12, Min: 6, HeightRatio: 0.70, ShrinkFactor: 0.85},
	"zh-tw": {Max: 12, Min: 6, HeightRatio: 0.70, ShrinkFactor: 0.85},
	"ja":    {Max: 12, Min: 6, HeightRatio: 0.70, ShrinkFactor: 0.85},
	"ko":    {Max: 12, Min: 6, HeightRatio: 0.70, ShrinkFactor: 0.85},
	"th":    {Max: 11, Min: 5, HeightRatio: 0.72, ShrinkFactor: 0.88},
	"ar":    {Max: 13, Min: 6, HeightRatio: 0.65, ShrinkFactor: 0.88},
	"he":    {Max: 13, Min: 6, HeightRatio: 0.65, ShrinkFactor: 0.88},
	"vi":    {Max: 11, Min: 5, HeightRatio: 0.73, ShrinkFactor: 0.88},
}

// FontSpecFor returns the fitting bounds for a target language.
func FontSpecFor(lang string) FontSizeSpec {
	if spec, ok := fontSpecs[translate.NormalizeLangCode(lang)]; ok {
		return spec
	}
	return defaultFontSpec
}

// fontFiles maps language codes to the Noto font file that covers their
// script. Latin-script languages share the base family.
var fontFiles = map[string]string{
	"zh-cn": "NotoSansSC-Regular.ttf",
	"zh-tw": "NotoSansTC-Regular.ttf",
	"ja":    "NotoSansJP-Regular.ttf",
	"ko":    "NotoSansKR-Regular.ttf",
	"th":    "NotoSansThai-Regular.ttf",
	"ar":    "NotoSansArabic-Regular.ttf",
	"he":    "NotoSansHebrew-Regular.ttf",
}

const latinFontFile = "NotoSans-Regular.ttf"

// FindFontFile resolves the font file for a language, searching fontDir and
// the common system font locations. Empty return means no UTF-8 font is
// available and the writer falls back to a built-in core font.
func FindFontFile(fontDir, lang string) string {
	name, ok := fontFiles[translate.NormalizeLangCode(lang)]
	if !ok {
		name = latinFontFile
	}
	dirs := []string{
		fontDir,
		"fonts",
		"/usr/share/fonts/truetype/noto",
		"/usr/share/fonts/noto",
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// MeasureFunc returns the rendered width in points of text at a font size.
// The PDF writer supplies real font metrics; planning without a writer uses
// HeuristicMeasure.
type MeasureFunc func(text string, fontSize float64) float64

// HeuristicMeasure approximates text width without font metrics: CJK glyphs
// are square (1.0 em), everything else averages around half an em.
func HeuristicMeasure(text string, fontSize float64) float64 {
	width := 0.0
	for _, r := range text {
		if isWideRune(r) {
			width += fontSize
		} else {
			width += fontSize * 0.5
		}
	}
	return width
}

func isWideRune(r rune) bool {
	switch {
	case r >= 0x1100 && r <= 0x11FF, // Hangul Jamo
		r >= 0x2E80 && r <= 0x9FFF, // CJK radicals through unified ideographs
		r >= 0xAC00 && r <= 0xD7AF, // Hangul syllables
		r >= 0xF900 && r <= 0xFAFF, // CJK compatibility ideographs
		r >= 0xFF00 && r <= 0xFF60: // fullwidth forms
		return true
	}
	return false
}

package render

import (
	"fmt"

	"doctrans/document"
	"doctrans/internal/constants"
	"doctrans/translate"
)

// QuadFinder locates the exact drawn quads of a text run on a source page,
// clipped to the neighborhood of a box. Implementations sit on a PDF engine;
// planning without one falls back to the extracted element box.
type QuadFinder interface {
	FindQuads(pageNum int, text string, near document.BoundingBox, tolerancePt float64) []document.BoundingBox
}

// PlannerOptions configure coordinate-mode planning.
type PlannerOptions struct {
	Mode       Mode // ModeOverlay or ModeSideBySide
	TargetLang string
	// Quads, when set, refines redaction rects to the glyphs actually drawn.
	Quads QuadFinder
	// Measure supplies real font metrics; nil uses the width heuristic.
	Measure MeasureFunc
	// MaskMarginPt shrinks each redaction rect so masks stop short of
	// adjacent ruling lines. Zero means the default.
	MaskMarginPt float64
}

func (o PlannerOptions) maskMargin() float64 {
	if o.MaskMarginPt > 0 {
		return o.MaskMarginPt
	}
	return constants.MaskMarginPt
}

// Planner turns a translated document into per-page drawing plans.
type Planner struct {
	opts PlannerOptions
	spec FontSizeSpec
}

// NewPlanner builds a planner for the given mode and target language.
func NewPlanner(opts PlannerOptions) (*Planner, error) {
	switch opts.Mode {
	case ModeOverlay, ModeSideBySide:
	default:
		return nil, fmt.Errorf("coordinate planner does not handle mode %q", opts.Mode)
	}
	return &Planner{opts: opts, spec: FontSpecFor(opts.TargetLang)}, nil
}

// Plan produces one PagePlan per source page, in page order.
func (p *Planner) Plan(doc *document.TranslatableDocument) ([]PagePlan, error) {
	byPage := doc.ElementsByPage()
	plans := make([]PagePlan, 0, len(doc.Pages))

	for _, page := range doc.Pages {
		var plan PagePlan
		switch p.opts.Mode {
		case ModeOverlay:
			plan = p.planOverlay(page, byPage[page.PageNum])
		case ModeSideBySide:
			plan = p.planSideBySide(page, byPage[page.PageNum])
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// planOverlay masks each source element and places its translation in the
// freed box. Redactions are collected for the whole page before any
// placement so the writer never masks text it has already drawn.
func (p *Planner) planOverlay(page document.PageInfo, elements []*document.TranslatableElement) PagePlan {
	plan := PagePlan{
		PageNum: page.PageNum,
		Width:   page.Width,
		Height:  page.Height,
	}
	rtl := translate.IsRTL(p.opts.TargetLang)

	for _, e := range elements {
		if !e.ShouldTranslate || e.BBox == nil {
			continue
		}
		plan.Redactions = append(plan.Redactions, p.redactionRects(page.PageNum, e)...)

		text := translationFor(e)
		fit := FitTextToBox(text, boxDims{Width: e.BBox.Width(), Height: e.BBox.Height()}, p.spec, p.opts.Measure)
		if fit.Overflow {
			log.Warnf("page %d: translation overflows %0.0fx%0.0fpt box at minimum size %.1fpt",
				page.PageNum, e.BBox.Width(), e.BBox.Height(), fit.FontSize)
		}
		plan.Placements = append(plan.Placements, TextPlacement{
			Text:     text,
			BBox:     *e.BBox,
			FontSize: fit.FontSize,
			Lines:    fit.Lines,
			RTL:      rtl,
			Style:    e.Style,
		})
	}
	return plan
}

// redactionRects returns the mask rects for one element. With a quad finder
// the masks hug the actual glyph quads; otherwise the extracted box is used
// with a doubled margin, since extracted boxes run wider than the ink.
func (p *Planner) redactionRects(pageNum int, e *document.TranslatableElement) []document.BoundingBox {
	margin := p.opts.maskMargin()
	if p.opts.Quads != nil {
		quads := p.opts.Quads.FindQuads(pageNum, e.Content, *e.BBox, 2.0)
		if len(quads) > 0 {
			out := make([]document.BoundingBox, 0, len(quads))
			for _, q := range quads {
				out = append(out, shrinkBox(q, margin))
			}
			return out
		}
	}
	return []document.BoundingBox{shrinkBox(*e.BBox, margin*2)}
}

func shrinkBox(b document.BoundingBox, margin float64) document.BoundingBox {
	out := document.BoundingBox{
		X0: b.X0 + margin,
		Y0: b.Y0 + margin,
		X1: b.X1 - margin,
		Y1: b.Y1 - margin,
	}
	if out.X0 >= out.X1 || out.Y0 >= out.Y1 {
		return b
	}
	return out
}

// planSideBySide doubles the page width and mirrors every translated element
// into the right half at a +pageWidth x offset.
func (p *Planner) planSideBySide(page document.PageInfo, elements []*document.TranslatableElement) PagePlan {
	plan := PagePlan{
		PageNum:  page.PageNum,
		Width:    page.Width * 2,
		Height:   page.Height,
		Divider:  true,
		DividerX: page.Width,
	}
	rtl := translate.IsRTL(p.opts.TargetLang)

	for _, e := range elements {
		if !e.ShouldTranslate || e.BBox == nil {
			continue
		}
		shifted := document.BoundingBox{
			X0: e.BBox.X0 + page.Width,
			Y0: e.BBox.Y0,
			X1: e.BBox.X1 + page.Width,
			Y1: e.BBox.Y1,
		}
		text := translationFor(e)
		fit := FitTextToBox(text, boxDims{Width: e.BBox.Width(), Height: e.BBox.Height()}, p.spec, p.opts.Measure)
		plan.Placements = append(plan.Placements, TextPlacement{
			Text:     text,
			BBox:     shifted,
			FontSize: fit.FontSize,
			Lines:    fit.Lines,
			RTL:      rtl,
			Style:    e.Style,
		})
	}
	return plan
}

package render

import (
	"fmt"

	"codeberg.org/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"doctrans/internal/constants"
)

// PDFWriter executes page plans into a PDF file. Overlay plans produce a
// translation layer (masks plus translated text) aligned to the source page
// geometry; side-by-side plans produce double-width pages with the
// translation on the right half. Compositing a layer onto the original pages
// is a downstream concern.
type PDFWriter struct {
	targetLang string
	fontPath   string
	fontName   string

	// measurer is a throwaway document used only for string width metrics,
	// so planning can use the same font the output will.
	measurer *fpdf.Fpdf
}

// NewPDFWriter prepares a writer for the target language, resolving a UTF-8
// font from fontDir and the system locations. Without one the built-in
// Helvetica is used, which covers Latin targets only.
func NewPDFWriter(targetLang, fontDir string) *PDFWriter {
	w := &PDFWriter{
		targetLang: targetLang,
		fontPath:   FindFontFile(fontDir, targetLang),
		fontName:   "Helvetica",
	}
	if w.fontPath != "" {
		w.fontName = "doc"
	}

	w.measurer = fpdf.NewCustom(&fpdf.InitType{UnitStr: "pt"})
	if w.fontPath != "" {
		w.measurer.AddUTF8Font(w.fontName, "", w.fontPath)
	}
	w.measurer.AddPageFormat("P", fpdf.SizeType{Wd: 1000, Ht: 1000})
	w.measurer.SetFont(w.fontName, "", 10)
	return w
}

// Measure returns a width function backed by the output font's real metrics.
func (w *PDFWriter) Measure() MeasureFunc {
	if w.measurer.Err() {
		return HeuristicMeasure
	}
	return func(text string, fontSize float64) float64 {
		w.measurer.SetFontSize(fontSize)
		return w.measurer.GetStringWidth(text)
	}
}

// Write renders the plans to outPath and validates the result.
func (w *PDFWriter) Write(plans []PagePlan, outPath string) error {
	doc := fpdf.NewCustom(&fpdf.InitType{UnitStr: "pt"})
	doc.SetAutoPageBreak(false, 0)
	if w.fontPath != "" {
		doc.AddUTF8Font(w.fontName, "", w.fontPath)
	}

	for _, plan := range plans {
		doc.AddPageFormat("P", fpdf.SizeType{Wd: plan.Width, Ht: plan.Height})

		// Masks before text; the plan order is part of the contract.
		doc.SetFillColor(255, 255, 255)
		for _, r := range plan.Redactions {
			doc.Rect(r.X0, r.Y0, r.Width(), r.Height(), "F")
		}

		if plan.Divider {
			doc.SetDrawColor(160, 160, 160)
			doc.SetLineWidth(0.5)
			doc.Line(plan.DividerX, 0, plan.DividerX, plan.Height)
		}

		doc.SetTextColor(0, 0, 0)
		for _, p := range plan.Placements {
			doc.SetFont(w.fontName, "", p.FontSize)
			for i, line := range p.Lines {
				if line == "" {
					continue
				}
				baseline := p.BBox.Y0 + p.FontSize + float64(i)*p.FontSize*constants.LineSpacing
				x := p.BBox.X0
				if p.RTL {
					x = p.BBox.X1 - doc.GetStringWidth(line)
					if x < p.BBox.X0 {
						x = p.BBox.X0
					}
				}
				doc.Text(x, baseline, line)
			}
		}
	}

	if doc.Err() {
		return fmt.Errorf("building output pdf: %w", doc.Error())
	}
	if err := doc.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("writing output pdf: %w", err)
	}
	if err := api.ValidateFile(outPath, nil); err != nil {
		return fmt.Errorf("output pdf failed validation: %w", err)
	}
	return nil
}

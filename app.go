package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"doctrans/cache"
	"doctrans/document"
	"doctrans/render"
	"doctrans/translate"
)

// App holds the shared dependencies of the translation service.
type App struct {
	Cache   *cache.TranslationCache
	Backend translate.Backend
	Server  *translate.ServerClient

	OutputDir        string
	FontDir          string
	MaxBatchChars    int
	SkipHeaderFooter bool
}

// TranslationRequest describes one document translation run.
type TranslationRequest struct {
	SourcePath  string
	SourceLang  string
	TargetLangs []string
	Mode        string
}

// TranslateDocument runs the full pipeline: parse, size gate, translate per
// target language, render, write. The document is parsed once and shared
// read-only across target languages; only TranslatedContent changes between
// passes. Returns the paths of all produced files.
func (app *App) TranslateDocument(ctx context.Context, req TranslationRequest, progress func(done, total int)) ([]string, error) {
	sourceType, err := document.DetectSourceType(req.SourcePath)
	if err != nil {
		return nil, err
	}
	parser, err := document.ParserFor(sourceType, document.ParseOptions{
		SkipHeaderFooter: app.SkipHeaderFooter,
	})
	if err != nil {
		return nil, err
	}

	doc, err := parser.Parse(req.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", req.SourcePath, err)
	}
	if !doc.Metadata.HasTextLayer {
		return nil, fmt.Errorf("%s has no extractable text layer (likely a scanned document); OCR it first", req.SourcePath)
	}
	if err := document.CheckSizeLimits(doc, 0, 0); err != nil {
		return nil, err
	}

	texts := doc.UniqueTexts()
	totalUnits := len(texts) * len(req.TargetLangs)
	unitsDone := 0

	var outputs []string
	for _, targetLang := range req.TargetLangs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log.Infof("translating %s: %d unique segments %s -> %s",
			filepath.Base(req.SourcePath), len(texts), req.SourceLang, targetLang)

		langBase := unitsDone
		bt := translate.NewBatchTranslator(app.Backend, req.SourceLang, targetLang,
			translate.WithCache(app.Cache),
			translate.WithMaxBatchChars(app.MaxBatchChars),
			translate.WithProgress(func(done, _ int) {
				if progress != nil {
					progress(langBase+done, totalUnits)
				}
			}),
		)
		translations, err := bt.TranslateAll(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("translating to %s: %w", targetLang, err)
		}
		unitsDone += len(texts)

		doc.ApplyTranslations(translations)
		out, err := app.renderDocument(doc, req.Mode, targetLang, req.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("rendering %s output: %w", targetLang, err)
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

func (app *App) renderDocument(doc *document.TranslatableDocument, mode, targetLang, sourcePath string) (string, error) {
	if err := os.MkdirAll(app.OutputDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))

	switch render.Mode(mode) {
	case render.ModeInline:
		r := &render.InlineRenderer{}
		md := render.SerializeMarkdown(r.Render(doc))
		outPath := filepath.Join(app.OutputDir, fmt.Sprintf("%s_%s.md", base, targetLang))
		if err := os.WriteFile(outPath, []byte(md), 0644); err != nil {
			return "", fmt.Errorf("writing markdown output: %w", err)
		}
		return outPath, nil

	case render.ModeOverlay, render.ModeSideBySide:
		writer := render.NewPDFWriter(targetLang, app.FontDir)
		planner, err := render.NewPlanner(render.PlannerOptions{
			Mode:       render.Mode(mode),
			TargetLang: targetLang,
			Measure:    writer.Measure(),
		})
		if err != nil {
			return "", err
		}
		plans, err := planner.Plan(doc)
		if err != nil {
			return "", err
		}
		outPath := filepath.Join(app.OutputDir, fmt.Sprintf("%s_%s.pdf", base, targetLang))
		if err := writer.Write(plans, outPath); err != nil {
			return "", err
		}
		return outPath, nil

	default:
		return "", fmt.Errorf("unknown render mode %q", mode)
	}
}

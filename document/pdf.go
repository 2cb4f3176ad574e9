package document

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/google/uuid"
	pdflib "github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"

	"doctrans/internal/constants"
)

var log = logrus.New()

// PDFParser extracts line-granularity elements from a PDF text layer.
//
// Positioned text runs come from the content stream; runs sharing a baseline
// are grouped into one visual line per element. Line granularity matters:
// block-level boxes are too coarse to redact without damaging adjacent table
// borders or images. Document metadata and the scanned-source heuristic come
// from MuPDF, which reads the info dictionary more reliably than the content
// stream walk.
type PDFParser struct {
	opts ParseOptions
}

// NewPDFParser returns a parser with the given classification options.
func NewPDFParser(opts ParseOptions) *PDFParser {
	if opts.MinTextLength <= 0 {
		opts.MinTextLength = 1
	}
	return &PDFParser{opts: opts}
}

func (p *PDFParser) SupportedExtensions() []string { return []string{".pdf"} }

// Parse reads the file and builds the document aggregate.
func (p *PDFParser) Parse(path string) (*TranslatableDocument, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	var (
		elements []*TranslatableElement
		pages    []PageInfo
		seen     = make(map[string]struct{})
	)

	numPages := reader.NumPage()
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		width, height := pageSize(page)
		pages = append(pages, PageInfo{
			PageNum:  pageNum,
			Width:    width,
			Height:   height,
			Rotation: pageRotation(page),
		})

		lines, rects := extractPageContent(page, height)
		tableBoxes := detectTableRegions(rects)

		for i, line := range lines {
			text := strings.TrimSpace(line.text)
			if len([]rune(text)) < p.opts.MinTextLength {
				continue
			}
			key := fmt.Sprintf("p%d|%s", pageNum, StructuralKey(text+fmt.Sprintf("@%.0f,%.0f", line.bbox.X0, line.bbox.Y0)))
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			elemType := ElementText
			shouldTranslate := true
			switch ClassifyRegion(line.bbox, height, p.opts.headerFooterMargin()) {
			case RegionHeader:
				elemType = ElementHeader
				if p.opts.SkipHeaderFooter {
					shouldTranslate = false
				}
			case RegionFooter:
				elemType = ElementFooter
				if p.opts.SkipHeaderFooter {
					shouldTranslate = false
				}
			}

			bbox := line.bbox
			elem := &TranslatableElement{
				ID:              fmt.Sprintf("p%d_l%d_%s", pageNum, i, uuid.NewString()[:8]),
				Content:         text,
				Type:            elemType,
				PageNum:         pageNum,
				BBox:            &bbox,
				Style:           line.style,
				ShouldTranslate: shouldTranslate,
				Metadata:        map[string]any{"line_no": i},
			}
			elements = append(elements, elem)
		}

		tagTableCells(elements, pageNum, tableBoxes)
	}

	elements = sortByReadingOrder(elements)

	meta, err := p.extractMetadata(path, len(pages))
	if err != nil {
		// Metadata is best effort; the element tree is still usable.
		log.Debugf("pdf metadata extraction failed for %s: %v", path, err)
		meta = Metadata{PageCount: len(pages), HasTextLayer: true}
	}

	return &TranslatableDocument{
		SourcePath: path,
		SourceType: "pdf",
		Elements:   elements,
		Pages:      pages,
		Metadata:   meta,
	}, nil
}

type pdfLine struct {
	text  string
	bbox  BoundingBox
	style *StyleInfo
}

// extractPageContent walks the content stream and groups text runs into
// baseline lines. Returned boxes are already in internal (y-down)
// coordinates; the y flip happens here and nowhere else.
func extractPageContent(page pdflib.Page, pageHeight float64) ([]pdfLine, []BoundingBox) {
	content, ok := pageContent(page)
	if !ok {
		return nil, nil
	}

	// Bucket runs by baseline so sub-point jitter does not split a line.
	type run struct{ texts []pdflib.Text }
	buckets := make(map[int]*run)
	var keys []int
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		key := int(math.Round(t.Y / 2))
		b, exists := buckets[key]
		if !exists {
			b = &run{}
			buckets[key] = b
			keys = append(keys, key)
		}
		b.texts = append(b.texts, t)
	}
	// Baselines are in PDF coordinates, so higher y means higher on the page.
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))

	var lines []pdfLine
	for _, key := range keys {
		texts := buckets[key].texts
		sort.Slice(texts, func(i, j int) bool { return texts[i].X < texts[j].X })

		var (
			sb           strings.Builder
			x0           = math.Inf(1)
			x1           = math.Inf(-1)
			baseline     = texts[0].Y
			size         = texts[0].FontSize
			style        *StyleInfo
			prevRightEnd float64
		)
		for i, t := range texts {
			if i > 0 && t.X-prevRightEnd > t.FontSize*0.3 {
				sb.WriteString(" ")
			}
			sb.WriteString(t.S)
			x0 = math.Min(x0, t.X)
			x1 = math.Max(x1, t.X+t.W)
			if t.FontSize > size {
				size = t.FontSize
			}
			if style == nil && t.Font != "" {
				style = &StyleInfo{
					FontName: t.Font,
					FontSize: t.FontSize,
					Bold:     strings.Contains(strings.ToLower(t.Font), "bold"),
					Italic: strings.Contains(strings.ToLower(t.Font), "italic") ||
						strings.Contains(strings.ToLower(t.Font), "oblique"),
				}
			}
			prevRightEnd = t.X + t.W
		}
		if size <= 0 {
			size = 10
		}
		// Approximate the line box from the baseline: 0.8em ascent, 0.2em
		// descent (PDF coords, y up), then flip into internal coordinates.
		bbox := NormalizeBBox(x0, baseline-size*0.2, x1, baseline+size*0.8, pageHeight, true)
		lines = append(lines, pdfLine{text: sb.String(), bbox: bbox, style: style})
	}

	var rects []BoundingBox
	for _, r := range content.Rect {
		rects = append(rects, NormalizeBBox(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, pageHeight, true))
	}
	return lines, rects
}

// pageContent shields the caller from content-stream panics in the
// underlying reader; a malformed page yields no elements instead of
// aborting the parse.
func pageContent(page pdflib.Page) (content pdflib.Content, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("skipping malformed pdf page content: %v", r)
			ok = false
		}
	}()
	return page.Content(), true
}

func pageSize(page pdflib.Page) (float64, float64) {
	box := page.V.Key("MediaBox")
	for box.IsNull() {
		parent := page.V.Key("Parent")
		if parent.IsNull() {
			return 612, 792 // US Letter default
		}
		box = parent.Key("MediaBox")
		page.V = parent
	}
	x0 := box.Index(0).Float64()
	y0 := box.Index(1).Float64()
	x1 := box.Index(2).Float64()
	y1 := box.Index(3).Float64()
	return math.Abs(x1 - x0), math.Abs(y1 - y0)
}

func pageRotation(page pdflib.Page) int {
	rot := page.V.Key("Rotate")
	if rot.IsNull() {
		return 0
	}
	r := int(rot.Int64()) % 360
	if r < 0 {
		r += 360
	}
	return r
}

// detectTableRegions clusters ruling-line rectangles from the content stream
// into candidate table regions. A cluster only counts as a table when it has
// enough segments to plausibly be a grid.
func detectTableRegions(rects []BoundingBox) []BoundingBox {
	const touchTolerance = 3.0
	const minSegments = 4

	parent := make([]int, len(rects))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) { parent[find(a)] = find(b) }

	for i := 0; i < len(rects); i++ {
		for j := i + 1; j < len(rects); j++ {
			grown := BoundingBox{
				X0: rects[i].X0 - touchTolerance, Y0: rects[i].Y0 - touchTolerance,
				X1: rects[i].X1 + touchTolerance, Y1: rects[i].Y1 + touchTolerance,
			}
			if IoU(grown, rects[j]) > 0 || Inside(rects[j], grown, 0) {
				union(i, j)
			}
		}
	}

	groups := make(map[int][]BoundingBox)
	for i, r := range rects {
		root := find(i)
		groups[root] = append(groups[root], r)
	}
	var tables []BoundingBox
	for _, members := range groups {
		if len(members) < minSegments {
			continue
		}
		box := MergeBBoxes(members)
		if box.Width() < 20 || box.Height() < 10 {
			continue
		}
		tables = append(tables, box)
	}
	return tables
}

// tagTableCells re-tags elements of one page whose box sits inside a
// detected table region.
func tagTableCells(elements []*TranslatableElement, pageNum int, tables []BoundingBox) {
	if len(tables) == 0 {
		return
	}
	for _, e := range elements {
		if e.PageNum != pageNum || e.BBox == nil {
			continue
		}
		for _, t := range tables {
			if Inside(*e.BBox, t, constants.TableTolerancePt) {
				e.Type = ElementTableCell
				e.Metadata["in_table"] = true
				break
			}
		}
	}
}

func sortByReadingOrder(elements []*TranslatableElement) []*TranslatableElement {
	sort.SliceStable(elements, func(i, j int) bool {
		if elements[i].PageNum != elements[j].PageNum {
			return elements[i].PageNum < elements[j].PageNum
		}
		yi, xi := readingKey(elements[i])
		yj, xj := readingKey(elements[j])
		if yi != yj {
			return yi < yj
		}
		return xi < xj
	})
	return elements
}

// extractMetadata reads document info through MuPDF and applies the
// scanned-source heuristic over the plain text extraction.
func (p *PDFParser) extractMetadata(path string, pageCount int) (Metadata, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return Metadata{}, err
	}
	defer doc.Close()

	totalChars := 0
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			continue
		}
		totalChars += len([]rune(strings.TrimSpace(text)))
	}
	if pageCount == 0 {
		pageCount = doc.NumPage()
	}
	avg := float64(totalChars) / math.Max(float64(pageCount), 1)

	info := doc.Metadata()
	return Metadata{
		Title:        info["title"],
		Author:       info["author"],
		Subject:      info["subject"],
		Creator:      info["creator"],
		Producer:     info["producer"],
		CreationDate: info["creationDate"],
		PageCount:    pageCount,
		HasTextLayer: avg >= constants.ScannedPageCharThreshold,
	}, nil
}

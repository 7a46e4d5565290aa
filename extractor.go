package rubrica

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tsawler/rubrica/layout"
	"github.com/tsawler/rubrica/model"
	"github.com/tsawler/rubrica/ocr"
	"github.com/tsawler/rubrica/persona"
	"github.com/tsawler/rubrica/reader"
	"github.com/tsawler/rubrica/stats"
	"github.com/tsawler/rubrica/text"
)

// Element text length bounds. Shorter strings are stray glyphs or page
// furniture, longer ones are body paragraphs. Both bounds are inclusive.
const (
	minElementLength = 3
	maxElementLength = 200
)

// Extractor provides a fluent interface for inferring structure from PDFs.
// Each configuration method returns a new Extractor instance, making it
// safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source
	filename string

	// Open document
	doc *reader.Document

	// Lifecycle
	ownsDoc   bool // true if we opened the document and should close it
	docOpened bool // true if the document has been opened

	// Configuration
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error

	// Warnings accumulated during processing
	warnings []Warning
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename:  e.filename,
		doc:       e.doc,
		ownsDoc:   e.ownsDoc,
		docOpened: e.docOpened,
		options:   e.options.clone(),
		err:       e.err,
		warnings:  append([]Warning(nil), e.warnings...),
	}
}

// ensureDocument opens the document if not already open.
func (e *Extractor) ensureDocument() error {
	if e.docOpened {
		return nil
	}
	if e.filename == "" {
		return fmt.Errorf("no filename specified")
	}

	doc, err := reader.Open(e.filename)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	e.doc = doc
	e.ownsDoc = true
	e.docOpened = true
	return nil
}

// Close releases resources associated with the Extractor.
// It is safe to call Close multiple times.
func (e *Extractor) Close() error {
	if e.ownsDoc && e.doc != nil {
		err := e.doc.Close()
		e.doc = nil
		e.ownsDoc = false
		return err
	}
	return nil
}

func (e *Extractor) warnf(code WarningCode, page int, format string, args ...any) {
	e.warnings = append(e.warnings, Warning{
		Code:    code,
		Page:    page,
		Message: fmt.Sprintf(format, args...),
	})
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// MaxPages caps how many pages are processed. Documents beyond the cap
// produce a warning and trailing pages are skipped. A negative value
// removes the cap.
//
// Example:
//
//	outline, _, err := rubrica.Open("doc.pdf").MaxPages(10).Outline()
func (e *Extractor) MaxPages(n int) *Extractor {
	newExt := e.clone()
	newExt.options.maxPages = n
	return newExt
}

// MinFontSize sets the absolute size floor for font-prominence heading
// detection. Numbered and canonical headings are matched by their text and
// ignore the floor.
func (e *Extractor) MinFontSize(size float64) *Extractor {
	newExt := e.clone()
	newExt.options.minFontSize = size
	return newExt
}

// MinConfidence sets the confidence threshold below which heading
// candidates are discarded.
//
// Example:
//
//	outline, _, err := rubrica.Open("doc.pdf").MinConfidence(0.75).Outline()
func (e *Extractor) MinConfidence(confidence float64) *Extractor {
	newExt := e.clone()
	newExt.options.minConfidence = confidence
	return newExt
}

// ExcludeHeadersFooters controls whether text repeating at the same page
// position across most pages is dropped before structure inference.
// Enabled by default; pass false for single-page or poster-like documents
// where repetition detection cannot work.
func (e *Extractor) ExcludeHeadersFooters(exclude bool) *Extractor {
	newExt := e.clone()
	newExt.options.excludeHeadersFooters = exclude
	return newExt
}

// CanonicalSections adds section names (lowercase) that are recognized as
// level-1 headings regardless of font size, on top of the built-in
// academic set. Multiple calls are cumulative.
//
// Example:
//
//	outline, _, err := rubrica.Open("doc.pdf").
//	    CanonicalSections("findings", "recommendations").
//	    Outline()
func (e *Extractor) CanonicalSections(names ...string) *Extractor {
	newExt := e.clone()
	newExt.options.canonicalSections = append(newExt.options.canonicalSections, names...)
	return newExt
}

// OCRLanguage sets the Tesseract language used when image-only pages are
// recovered by OCR. Has no effect unless the binary was built with the
// ocr tag.
func (e *Extractor) OCRLanguage(lang string) *Extractor {
	newExt := e.clone()
	newExt.options.ocrLanguage = lang
	return newExt
}

// WithConfig applies a full Config, typically loaded from YAML, to the
// extraction chain. Later chain methods still override individual fields.
//
// Example:
//
//	cfg, err := rubrica.LoadConfig("rubrica.yaml")
//	if err != nil {
//	    // handle error
//	}
//	outline, _, err := rubrica.Open("doc.pdf").WithConfig(cfg).Outline()
func (e *Extractor) WithConfig(config *Config) *Extractor {
	newExt := e.clone()
	newExt.options.maxPages = config.MaxPages
	newExt.options.minFontSize = config.MinFontSize
	newExt.options.minConfidence = config.MinConfidence
	newExt.options.excludeHeadersFooters = config.ExcludeHeadersFooters
	newExt.options.canonicalSections = append([]string(nil), config.CanonicalSections...)
	newExt.options.ocrLanguage = config.OCRLanguage
	newExt.options.title.SizeTolerance = config.Title.SizeTolerance
	newExt.options.title.MaxYNorm = config.Title.MaxDepth
	newExt.options.title.LineEpsilon = config.Title.LineEpsilon
	return newExt
}

// ============================================================================
// Terminal Operations (execute extraction and return results)
// ============================================================================

// Outline extracts the document title and heading hierarchy.
// This is a terminal operation that closes the underlying document.
//
// Returns the outline, any warnings encountered during processing, and an
// error if extraction failed. Warnings indicate non-fatal issues (e.g. an
// unreadable page) where extraction succeeded but results may be
// incomplete.
//
// Example:
//
//	outline, warnings, err := rubrica.Open("document.pdf").Outline()
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", rubrica.FormatWarnings(warnings))
//	}
func (e *Extractor) Outline() (model.Outline, []Warning, error) {
	if e.err != nil {
		return model.Outline{}, nil, e.err
	}
	if err := e.ensureDocument(); err != nil {
		return model.Outline{}, nil, err
	}
	defer e.Close()

	doc, err := e.extract()
	if err != nil {
		return model.Outline{}, e.warnings, err
	}
	return e.outlineOf(doc), e.warnings, nil
}

// Title extracts just the document title.
// This is a terminal operation that closes the underlying document.
//
// Example:
//
//	title, _, err := rubrica.Open("document.pdf").Title()
func (e *Extractor) Title() (string, []Warning, error) {
	if e.err != nil {
		return "", nil, e.err
	}
	if err := e.ensureDocument(); err != nil {
		return "", nil, err
	}
	defer e.Close()

	doc, err := e.extract()
	if err != nil {
		return "", e.warnings, err
	}
	elements := e.filteredElements(doc)
	title := e.titleExtractor().Extract(pageOne(elements))
	return title, e.warnings, nil
}

// Headings extracts the classified headings without the title.
// This is a terminal operation that closes the underlying document.
func (e *Extractor) Headings() ([]model.Heading, []Warning, error) {
	outline, warnings, err := e.Outline()
	if err != nil {
		return nil, warnings, err
	}
	return outline.Headings, warnings, nil
}

// Document extracts the full intermediate representation: every page with
// its cleaned text elements and font properties. This is a terminal
// operation that closes the underlying document.
//
// Example:
//
//	doc, warnings, err := rubrica.Open("document.pdf").Document()
func (e *Extractor) Document() (*model.Document, []Warning, error) {
	if e.err != nil {
		return nil, nil, e.err
	}
	if err := e.ensureDocument(); err != nil {
		return nil, nil, err
	}
	defer e.Close()

	doc, err := e.extract()
	if err != nil {
		return nil, e.warnings, err
	}
	return doc, e.warnings, nil
}

// Elements extracts the flattened text elements of all processed pages in
// page order. This is a terminal operation that closes the underlying
// document.
func (e *Extractor) Elements() ([]model.TextElement, []Warning, error) {
	doc, warnings, err := e.Document()
	if err != nil {
		return nil, warnings, err
	}
	return doc.Elements(), warnings, nil
}

// Sections segments the document into titled sections with their body
// text, the unit consumed by persona ranking. This is a terminal operation
// that closes the underlying document.
//
// Example:
//
//	sections, _, err := rubrica.Open("guide.pdf").Sections()
func (e *Extractor) Sections() ([]persona.Section, []Warning, error) {
	if e.err != nil {
		return nil, nil, e.err
	}
	if err := e.ensureDocument(); err != nil {
		return nil, nil, err
	}
	defer e.Close()

	doc, err := e.extract()
	if err != nil {
		return nil, e.warnings, err
	}
	sections := persona.NewSegmenter().Segment(e.documentName(), e.filteredElements(doc))
	return sections, e.warnings, nil
}

// Analyze extracts the document and reports quality metrics useful for
// deciding whether the output is trustworthy. This is a terminal operation
// that closes the underlying document.
//
// Example:
//
//	report, _, err := rubrica.Open("scan.pdf").Analyze()
//	if report.OCRPages > 0 {
//	    log.Println("document required OCR")
//	}
func (e *Extractor) Analyze() (*Report, []Warning, error) {
	if e.err != nil {
		return nil, nil, e.err
	}
	if err := e.ensureDocument(); err != nil {
		return nil, nil, err
	}
	defer e.Close()

	doc, err := e.extract()
	if err != nil {
		return nil, e.warnings, err
	}
	return buildReport(doc, e.warnings), e.warnings, nil
}

// PageCount returns the number of pages in the document. Unlike terminal
// operations it does not close the document, so it can be called before
// further chaining.
//
// Example:
//
//	count, err := rubrica.Open("document.pdf").PageCount()
func (e *Extractor) PageCount() (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	if err := e.ensureDocument(); err != nil {
		return 0, err
	}
	return e.doc.PageCount(), nil
}

// ============================================================================
// Extraction pipeline
// ============================================================================

// extract walks the document page by page and builds the intermediate
// representation. Pages that cannot be read contribute an empty page and a
// warning; extraction never fails because of a single bad page.
func (e *Extractor) extract() (*model.Document, error) {
	if err := e.ensureDocument(); err != nil {
		return nil, err
	}

	doc := model.NewDocument()
	doc.Path = e.filename

	pageCount := e.doc.PageCount()
	if e.options.maxPages > 0 && pageCount > e.options.maxPages {
		e.warnf(WarnPagesCapped, 0, "processing %d of %d pages", e.options.maxPages, pageCount)
		pageCount = e.options.maxPages
	}

	var ocrClient *ocr.Client
	ocrChecked := false
	defer func() {
		if ocrClient != nil {
			ocrClient.Close()
		}
	}()

	for nr := 1; nr <= pageCount; nr++ {
		page := &model.Page{
			Width:  e.doc.PageWidth(nr),
			Height: e.doc.PageHeight(nr),
		}

		spans, err := e.doc.PageSpans(nr)
		if err != nil {
			e.warnf(WarnPageUnreadable, nr, "skipping page: %v", err)
			doc.AddPage(page)
			continue
		}

		elements := e.pageElements(spans, nr, page.Height)

		// Character-level PDFs emit one span per glyph, all below the
		// length floor. Reassembling them into lines recovers the text.
		if len(elements) == 0 && len(spans) > 0 {
			elements = e.pageElements(reader.ReassembleLines(spans), nr, page.Height)
			if len(elements) > 0 {
				e.warnf(WarnLineFallback, nr, "text recovered by line reassembly")
			}
		}

		// Scanned pages carry images instead of text.
		if len(elements) == 0 {
			images, imgErr := e.doc.PageImages(nr)
			if imgErr == nil && len(images) > 0 {
				if !ocrChecked {
					ocrChecked = true
					ocrClient = e.openOCR()
				}
				if ocrClient != nil {
					recognized, ocrErr := ocrClient.RecognizePage(images)
					if ocrErr == nil {
						elements = e.textElements(recognized, nr)
					}
					if len(elements) > 0 {
						e.warnf(WarnOCRFallback, nr, "text recovered by OCR from %d image(s)", len(images))
					}
				}
			}
		}

		if len(elements) == 0 {
			e.warnf(WarnPageEmpty, nr, "page yielded no usable text")
		}

		page.Elements = elements
		doc.AddPage(page)
	}

	return doc, nil
}

// openOCR creates the OCR client on first use, warning once when support
// is unavailable.
func (e *Extractor) openOCR() *ocr.Client {
	client, err := ocr.New()
	if err != nil {
		e.warnf(WarnOCRUnavailable, 0, "cannot recover image-only pages: %v", err)
		return nil
	}
	if e.options.ocrLanguage != "" {
		if err := client.SetLanguage(e.options.ocrLanguage); err != nil {
			e.warnf(WarnOCRUnavailable, 0, "cannot set OCR language %q: %v", e.options.ocrLanguage, err)
			client.Close()
			return nil
		}
	}
	return client
}

// pageElements converts raw spans into cleaned text elements, dropping
// strings outside the length bounds.
func (e *Extractor) pageElements(spans []reader.Span, pageNr int, pageHeight float64) []model.TextElement {
	elements := make([]model.TextElement, 0, len(spans))
	for _, span := range spans {
		trimmed := strings.TrimSpace(text.Clean(span.Text))
		if len(trimmed) < minElementLength || len(trimmed) > maxElementLength {
			continue
		}
		flags := 0
		if span.Bold {
			flags = model.ForceBoldFlag
		}
		elements = append(elements, model.TextElement{
			Text:  trimmed,
			Font:  model.NewFontInfo(span.FontSize, span.FontName, flags, span.BBox),
			Page:  pageNr,
			YNorm: yNorm(span.BBox.Top(), pageHeight),
		})
	}
	return elements
}

// textElements converts plain recognized text into elements. OCR output
// has no font data, so every line is assigned the assumed body size and an
// even vertical spread. Such pages contribute body text but no
// font-prominence heading signal.
func (e *Extractor) textElements(raw string, pageNr int) []model.TextElement {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(text.Clean(line))
		if len(trimmed) < minElementLength || len(trimmed) > maxElementLength {
			continue
		}
		lines = append(lines, trimmed)
	}

	elements := make([]model.TextElement, len(lines))
	for i, line := range lines {
		elements[i] = model.TextElement{
			Text:  line,
			Font:  model.NewFontInfo(stats.DefaultBodySize, "", 0, model.BBox{}),
			Page:  pageNr,
			YNorm: (float64(i) + 0.5) / float64(len(lines)),
		}
	}
	return elements
}

// outlineOf runs the structure heuristics over an extracted document.
func (e *Extractor) outlineOf(doc *model.Document) model.Outline {
	elements := e.filteredElements(doc)
	title := e.titleExtractor().Extract(pageOne(elements))
	fontStats := stats.Compute(elements)
	headings := e.classifier().Classify(elements, fontStats, title)
	return model.Outline{Title: title, Headings: headings}
}

// filteredElements returns the document's elements with repeating headers
// and footers removed when that option is enabled.
func (e *Extractor) filteredElements(doc *model.Document) []model.TextElement {
	if !e.options.excludeHeadersFooters {
		return doc.Elements()
	}
	return layout.NewHeaderFooterDetector().Filter(doc)
}

func (e *Extractor) titleExtractor() *layout.TitleExtractor {
	return layout.NewTitleExtractorWithConfig(e.options.title)
}

func (e *Extractor) classifier() *layout.Classifier {
	config := layout.DefaultClassifierConfig()
	config.MinFontSize = e.options.minFontSize
	config.MinConfidence = e.options.minConfidence
	config.CanonicalSections = append(config.CanonicalSections, e.options.canonicalSections...)
	return layout.NewClassifierWithConfig(config)
}

// documentName returns the base filename used to label sections, or ""
// when the extractor was built from an already-open document.
func (e *Extractor) documentName() string {
	if e.filename == "" {
		return ""
	}
	return filepath.Base(e.filename)
}

// pageOne returns the elements of the first page.
func pageOne(elements []model.TextElement) []model.TextElement {
	var first []model.TextElement
	for _, el := range elements {
		if el.Page == 1 {
			first = append(first, el)
		}
	}
	return first
}

// yNorm converts a PDF-space top edge (origin at bottom-left) into the
// normalized depth from the page top used by the layout heuristics,
// clamped to [0, 1].
func yNorm(top, pageHeight float64) float64 {
	if pageHeight <= 0 {
		return 0
	}
	n := (pageHeight - top) / pageHeight
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

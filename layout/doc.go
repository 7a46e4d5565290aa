// Package layout infers document structure from font statistics: the
// document title and the leveled heading outline.
//
// The package operates on the flat, page-ordered [model.TextElement] stream
// produced by extraction. Both detectors are driven by the per-document
// [stats.FontStatistics], so every size threshold is relative to the
// document's own body text rather than absolute points.
//
// # Title
//
// The [TitleExtractor] selects the largest-font elements in the upper region
// of page 1 and assembles them into visual lines:
//
//	title := layout.NewTitleExtractor().Extract(doc.PageElements(1))
//
// # Headings
//
// The [Classifier] filters elements to heading candidates and assigns each a
// level through an ordered rule ladder: structural patterns ("1.", "2.3",
// ALL CAPS, canonical section names) first, then a font-size-ratio and
// boldness fallback against the 75th/90th percentile thresholds. A
// form-document guard suppresses the outline entirely for field-label-heavy
// layouts, which otherwise flood the classifier with false positives.
//
//	headings := layout.NewClassifier().Classify(elements, fontStats, title)
//
// Classification never fails: malformed elements are skipped and degenerate
// input yields an empty outline.
//
// # Headers and Footers
//
// The [HeaderFooterDetector] finds text that repeats in the top or bottom
// band across pages (running titles, page numbers) so the facade can drop it
// before classification.
package layout

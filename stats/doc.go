// Package stats computes the per-document font statistics that parameterize
// title and heading inference.
//
// The central quantity is the modal font size: the most frequent exact size
// across all extracted elements. In common report and academic layouts the
// mode is the paragraph text size, which makes it a far more stable "body
// size" reference than the mean (a handful of display-size headings can drag
// the mean well above the paragraph size). Percentiles are computed by floor
// indexing into the ascending size list, without interpolation, matching the
// thresholds the classifier was tuned against.
//
//	s := stats.Compute(doc.Elements())
//	if size >= s.P90 && size/s.Mode > 1.3 { ... }
//
// An empty element set yields [DefaultBodySize] in every field so downstream
// stages never divide by zero.
package stats

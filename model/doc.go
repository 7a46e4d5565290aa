// Package model provides the intermediate representation for extracted
// document content.
//
// This package defines the data structures the inference pipeline operates
// on. Extraction produces these types; the statistics, outline, and persona
// packages consume them, making them the primary API for working with
// document content.
//
// # Structure
//
// The [Document] type represents a scanned document as pages of positioned
// text:
//
//	doc := model.NewDocument()
//	doc.AddPage(page)
//	elements := doc.Elements()
//
// Each [Page] carries its dimensions and the ordered [TextElement] values
// found on it. A TextElement couples cleaned text with its [FontInfo] and a
// page-height-normalized vertical position, which is what makes thresholds
// resolution independent.
//
// # Outline
//
// The [Outline] type is the final artifact of heading inference: a title and
// a list of leveled [Heading] entries. It marshals to the stable JSON wire
// form ("H1", "H2", ... level tags) and renders as a markdown table of
// contents.
//
// # Geometry
//
// Geometric primitives support position calculations:
//
//   - [BBox] - bounding box in PDF page coordinates
//   - [Point] - 2D point
//   - [Matrix] - 2D affine transformation matrix (text matrix tracking)
package model

// Package reader opens PDF documents and produces positioned,
// font-annotated text spans for the analysis pipeline.
//
// Parsing, decompression and page-tree bookkeeping are delegated to
// github.com/pdfcpu/pdfcpu. This package layers three things on top:
//
//   - a content stream scanner that tracks the text state machine well
//     enough to recover each shown string's position and rendered size
//   - page font resolution, mapping resource names like /F1 to base font
//     names and descriptor flags so callers can detect bold faces
//   - raster image extraction for pages that carry scanned content
//     instead of a text layer
//
// # Opening Documents
//
// Use [Open] for files on disk, or [FromReader] for in-memory documents:
//
//	doc, err := reader.Open("document.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer doc.Close()
//
//	for pageNr := 1; pageNr <= doc.PageCount(); pageNr++ {
//	    spans, err := doc.PageSpans(pageNr)
//	    ...
//	}
//
// Pages are numbered from 1.
//
// # Span Granularity
//
// PageSpans emits one Span per text showing operator, which is whatever
// granularity the producing application chose: whole lines, words, or
// single glyphs. [ReassembleLines] regroups fragmented spans into line
// runs when callers need them.
//
// A Document is not safe for concurrent use. Callers that process many
// documents in parallel open one Document per goroutine.
package reader

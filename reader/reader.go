package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/tsawler/rubrica/model"
)

var (
	// ErrNotPDF reports that the input does not start with the PDF file
	// signature.
	ErrNotPDF = errors.New("not a PDF file")

	// ErrEncrypted reports that the document requires a password to open.
	ErrEncrypted = errors.New("document is encrypted")
)

// pdfSignature is the file magic every PDF starts with.
var pdfSignature = []byte("%PDF-")

// Default page dimensions stand in when a page carries no usable media
// box: 8.5 by 11 inches at 72 units per inch (US Letter).
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// Span is a single shown string from a page content stream together with
// the font state in effect when it was drawn. Coordinates are PDF user
// space: origin at the bottom-left of the page, units of 1/72 inch.
type Span struct {
	Text     string
	FontSize float64 // rendered size, text and transformation matrices applied
	FontName string  // base font name when resolvable, resource name otherwise
	Bold     bool
	BBox     model.BBox
}

// Document is an open PDF positioned for page-by-page span extraction.
// It is not safe for concurrent use.
type Document struct {
	ctx   *pdfmodel.Context
	file  *os.File // non-nil only for documents opened by path
	dims  []types.Dim
	fonts map[int]map[string]fontSpec
}

// Open opens the PDF at path.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	doc, err := FromReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	doc.file = f

	return doc, nil
}

// FromReader opens a PDF from an in-memory or already-open source. The
// reader must stay available for the lifetime of the Document.
func FromReader(rs io.ReadSeeker) (*Document, error) {
	if err := checkSignature(rs); err != nil {
		return nil, err
	}

	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(rs, conf)
	if err != nil {
		if isEncryptionErr(err) {
			return nil, fmt.Errorf("failed to read document: %w", ErrEncrypted)
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	doc := &Document{
		ctx:   ctx,
		fonts: make(map[int]map[string]fontSpec),
	}

	// Page dimensions resolve in one pass here. PageHeight falls back to a
	// default, so a resolution failure is not fatal.
	if dims, err := ctx.PageDims(); err == nil {
		doc.dims = dims
	}

	return doc, nil
}

// checkSignature verifies the %PDF- file magic and rewinds the reader.
func checkSignature(rs io.ReadSeeker) error {
	var magic [8]byte
	n, err := rs.Read(magic[:])
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind: %w", err)
	}
	if !bytes.HasPrefix(magic[:n], pdfSignature) {
		return ErrNotPDF
	}
	return nil
}

// isEncryptionErr reports whether a pdfcpu read failure looks like an
// authentication problem. pdfcpu reports these as plain errors, so
// matching on the message is the only way to tell them apart from parse
// errors.
func isEncryptionErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypt")
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// PageHeight returns the height of a page in PDF user-space units. Pages
// without a resolvable media box report the US Letter height.
func (d *Document) PageHeight(pageNr int) float64 {
	if pageNr < 1 || pageNr > len(d.dims) {
		return defaultPageHeight
	}
	if h := d.dims[pageNr-1].Height; h > 0 {
		return h
	}
	return defaultPageHeight
}

// PageWidth returns the width of a page in PDF user-space units. Pages
// without a resolvable media box report the US Letter width.
func (d *Document) PageWidth(pageNr int) float64 {
	if pageNr < 1 || pageNr > len(d.dims) {
		return defaultPageWidth
	}
	if w := d.dims[pageNr-1].Width; w > 0 {
		return w
	}
	return defaultPageWidth
}

// PageSpans scans a page's content stream and returns one Span per shown
// string, in drawing order. Pages without text return an empty slice.
// Malformed stream regions are skipped rather than failing the page.
func (d *Document) PageSpans(pageNr int) ([]Span, error) {
	if pageNr < 1 || pageNr > d.ctx.PageCount {
		return nil, fmt.Errorf("page %d out of range [1, %d]", pageNr, d.ctx.PageCount)
	}

	r, err := pdfcpu.ExtractPageContent(d.ctx, pageNr)
	if err != nil {
		return nil, fmt.Errorf("failed to extract content of page %d: %w", pageNr, err)
	}
	if r == nil {
		return nil, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content of page %d: %w", pageNr, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	return newScanner(data, d.pageFonts(pageNr)).scan(), nil
}

// Close releases the underlying file. Documents opened with FromReader
// have nothing to release.
func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	f := d.file
	d.file = nil
	return f.Close()
}

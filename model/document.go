package model

// Document represents an extracted PDF document as ordered pages of text
// elements.
type Document struct {
	Path  string
	Pages []*Page
}

// Page holds the text elements found on a single page along with the page
// geometry the elements were normalized against.
type Page struct {
	Number   int // 1-indexed
	Width    float64
	Height   float64
	Elements []TextElement
}

// NewDocument creates a new empty document
func NewDocument() *Document {
	return &Document{Pages: make([]*Page, 0)}
}

// AddPage appends a page and assigns its 1-based number.
func (d *Document) AddPage(page *Page) {
	page.Number = len(d.Pages) + 1
	d.Pages = append(d.Pages, page)
}

// GetPage returns a page by number (1-indexed)
func (d *Document) GetPage(number int) *Page {
	if number < 1 || number > len(d.Pages) {
		return nil
	}
	return d.Pages[number-1]
}

// PageCount returns the total number of pages
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Elements returns all text elements in page-major order.
func (d *Document) Elements() []TextElement {
	var elements []TextElement
	for _, page := range d.Pages {
		elements = append(elements, page.Elements...)
	}
	return elements
}

// PageElements returns the elements on a single page (1-indexed), or nil if
// the page does not exist.
func (d *Document) PageElements(number int) []TextElement {
	page := d.GetPage(number)
	if page == nil {
		return nil
	}
	return page.Elements
}

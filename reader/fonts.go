package reader

import (
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// fontSpec captures what span classification needs from a font dictionary:
// the base font name and the descriptor flag bits.
type fontSpec struct {
	baseName string
	flags    int
}

// pageFonts resolves the font resources of a page to fontSpecs keyed by
// resource name. Results are cached per page, including the empty result
// for pages without font resources. Unresolvable entries are skipped so a
// broken font dictionary never blocks text extraction.
func (d *Document) pageFonts(pageNr int) map[string]fontSpec {
	if cached, ok := d.fonts[pageNr]; ok {
		return cached
	}

	fonts := make(map[string]fontSpec)
	d.fonts[pageNr] = fonts

	_, _, attrs, err := d.ctx.PageDict(pageNr, false)
	if err != nil || attrs == nil || attrs.Resources == nil {
		return fonts
	}

	obj, found := attrs.Resources.Find("Font")
	if !found {
		return fonts
	}

	xref := d.ctx.XRefTable
	fontDict, err := xref.DereferenceDict(obj)
	if err != nil {
		return fonts
	}

	for resource, entry := range fontDict {
		fd, err := xref.DereferenceDict(entry)
		if err != nil || fd == nil {
			continue
		}
		fonts[resource] = fontSpecFromDict(xref, fd)
	}
	return fonts
}

// fontSpecFromDict extracts the base font name and descriptor flags from a
// font dictionary. Type0 fonts keep their descriptor on the descendant CID
// font, so the lookup falls through to DescendantFonts when the top-level
// dictionary has no flags.
func fontSpecFromDict(xref *pdfmodel.XRefTable, dict types.Dict) fontSpec {
	spec := fontSpec{
		baseName: dictName(xref, dict, "BaseFont"),
		flags:    descriptorFlags(xref, dict),
	}
	if spec.flags != 0 {
		return spec
	}

	obj, found := dict.Find("DescendantFonts")
	if !found {
		return spec
	}
	resolved, err := xref.Dereference(obj)
	if err != nil {
		return spec
	}
	arr, ok := resolved.(types.Array)
	if !ok || len(arr) == 0 {
		return spec
	}
	descendant, err := xref.DereferenceDict(arr[0])
	if err != nil || descendant == nil {
		return spec
	}
	spec.flags = descriptorFlags(xref, descendant)
	return spec
}

// descriptorFlags returns the Flags entry of a font's descriptor, or zero
// when the font has none.
func descriptorFlags(xref *pdfmodel.XRefTable, dict types.Dict) int {
	obj, found := dict.Find("FontDescriptor")
	if !found {
		return 0
	}
	descriptor, err := xref.DereferenceDict(obj)
	if err != nil || descriptor == nil {
		return 0
	}
	return dictInt(xref, descriptor, "Flags")
}

// dictName resolves a dictionary entry to a name string, or "" when the
// entry is missing or not a name.
func dictName(xref *pdfmodel.XRefTable, dict types.Dict, key string) string {
	obj, found := dict.Find(key)
	if !found {
		return ""
	}
	resolved, err := xref.Dereference(obj)
	if err != nil {
		return ""
	}
	if name, ok := resolved.(types.Name); ok {
		return string(name)
	}
	return ""
}

// dictInt resolves a dictionary entry to an int, or zero when the entry is
// missing or not an integer.
func dictInt(xref *pdfmodel.XRefTable, dict types.Dict, key string) int {
	obj, found := dict.Find(key)
	if !found {
		return 0
	}
	resolved, err := xref.Dereference(obj)
	if err != nil {
		return 0
	}
	if n, ok := resolved.(types.Integer); ok {
		return int(n)
	}
	return 0
}

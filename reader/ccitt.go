package reader

import (
	"bytes"
	"io"

	"golang.org/x/image/ccitt"

	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// decodeCCITT decodes a CCITT Group 3/4 fax compressed image stream into
// packed bilevel rows, one bit per pixel, MSB first. Scanned documents
// store their page images this way, and the decode parameters live in the
// stream dictionary:
//
//   - K: group selector (negative selects Group 4, otherwise Group 3)
//   - Columns: row width in pixels (default 1728)
//   - Rows: image height (default auto-detect)
//   - BlackIs1: bit interpretation, mapped to ccitt.Options.Invert
func decodeCCITT(xref *pdfmodel.XRefTable, sd types.StreamDict) ([]byte, error) {
	parms := ccittParms(xref, sd.Dict)

	columns := parms.intOr("Columns", 1728)
	rows := parms.intOr("Rows", 0)
	k := parms.intOr("K", 0)

	sf := ccitt.Group3
	if k < 0 {
		sf = ccitt.Group4
	}
	if rows == 0 {
		rows = ccitt.AutoDetectHeight
	}
	opts := &ccitt.Options{Invert: parms.boolOr("BlackIs1", false)}

	r := ccitt.NewReader(bytes.NewReader(sd.Raw), ccitt.MSB, sf, columns, rows, opts)
	return io.ReadAll(r)
}

// decodeParms wraps a DecodeParms dictionary with defaulting accessors. A
// nil dict yields defaults for every key.
type decodeParms struct {
	xref *pdfmodel.XRefTable
	dict types.Dict
}

// ccittParms locates the decode parameters for the CCITT filter. A filter
// pipeline carries one parameter entry per filter; the CCITT codec sits
// last, so the last array entry is its.
func ccittParms(xref *pdfmodel.XRefTable, dict types.Dict) decodeParms {
	parms := decodeParms{xref: xref}

	obj, found := dict.Find("DecodeParms")
	if !found {
		return parms
	}
	resolved, err := xref.Dereference(obj)
	if err != nil {
		return parms
	}

	switch v := resolved.(type) {
	case types.Dict:
		parms.dict = v
	case types.Array:
		if len(v) == 0 {
			return parms
		}
		if d, err := xref.DereferenceDict(v[len(v)-1]); err == nil {
			parms.dict = d
		}
	}
	return parms
}

func (p decodeParms) intOr(key string, def int) int {
	if p.dict == nil {
		return def
	}
	obj, found := p.dict.Find(key)
	if !found {
		return def
	}
	resolved, err := p.xref.Dereference(obj)
	if err != nil {
		return def
	}
	if n, ok := resolved.(types.Integer); ok {
		return int(n)
	}
	return def
}

func (p decodeParms) boolOr(key string, def bool) bool {
	if p.dict == nil {
		return def
	}
	obj, found := p.dict.Find(key)
	if !found {
		return def
	}
	resolved, err := p.xref.Dereference(obj)
	if err != nil {
		return def
	}
	if b, ok := resolved.(types.Boolean); ok {
		return bool(b)
	}
	return def
}

package reader

import (
	"testing"

	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func TestCCITTParms(t *testing.T) {
	xref := &pdfmodel.XRefTable{}

	t.Run("dict parms", func(t *testing.T) {
		dict := types.Dict{
			"DecodeParms": types.Dict{
				"K":        types.Integer(-1),
				"Columns":  types.Integer(2480),
				"BlackIs1": types.Boolean(true),
			},
		}
		parms := ccittParms(xref, dict)

		if got := parms.intOr("K", 0); got != -1 {
			t.Errorf("K = %d, want -1", got)
		}
		if got := parms.intOr("Columns", 1728); got != 2480 {
			t.Errorf("Columns = %d, want 2480", got)
		}
		if got := parms.intOr("Rows", 0); got != 0 {
			t.Errorf("Rows = %d, want default 0", got)
		}
		if !parms.boolOr("BlackIs1", false) {
			t.Error("BlackIs1 = false, want true")
		}
	})

	t.Run("array takes last entry", func(t *testing.T) {
		dict := types.Dict{
			"DecodeParms": types.Array{
				types.Dict{"Predictor": types.Integer(12)},
				types.Dict{"K": types.Integer(-1)},
			},
		}
		parms := ccittParms(xref, dict)

		if got := parms.intOr("K", 0); got != -1 {
			t.Errorf("K = %d, want -1", got)
		}
		if got := parms.intOr("Predictor", 0); got != 0 {
			t.Errorf("Predictor = %d, want 0 from the CCITT entry", got)
		}
	})

	t.Run("missing parms default", func(t *testing.T) {
		parms := ccittParms(xref, types.Dict{})

		if got := parms.intOr("Columns", 1728); got != 1728 {
			t.Errorf("Columns = %d, want default 1728", got)
		}
		if parms.boolOr("BlackIs1", false) {
			t.Error("BlackIs1 = true, want default false")
		}
	})
}

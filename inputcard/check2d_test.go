package inputcard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func surfaceParams(t *testing.T, iface bool) *Params {
	return mustParams(t,
		"ZPERIODL", []float64{0, 0, 0},
		"<NRBASIS>", 1,
		"<RBLEFT>", []float64{0, 0, 0},
		"INTERFACE", iface,
		"<NLBASIS>", 1,
		"ZPERIODR", []float64{0, 0, 0},
		"<RBRIGHT>", []float64{0, 0, 0},
	)
}

func TestCheck2D(t *testing.T) {
	bulk := [3]bool{true, true, true}
	surface := [3]bool{true, true, false}
	tests := []struct {
		name   string
		pbc    [3]bool
		params *Params
		ok     bool
		msg    string
	}{
		{
			name:   "bulk",
			pbc:    bulk,
			params: mustParams(t, "INTERFACE", false),
			ok:     true,
			msg:    "2D consistency check complete",
		},
		{
			name:   "surface",
			pbc:    surface,
			params: surfaceParams(t, true),
			ok:     true,
			msg:    "2D consistency check complete",
		},
		{
			name:   "incomplete surface",
			pbc:    surface,
			params: mustParams(t, "INTERFACE", true, "<NRBASIS>", 1),
			msg: "2D info given in parameters but structure is 3D\n" +
				"structure is 2D? True\ninput has 2D info? False\n" +
				"set keys are: ['INTERFACE', '<NRBASIS>']",
		},
		{
			name:   "interface off",
			pbc:    surface,
			params: surfaceParams(t, false),
			msg:    "'INTERFACE' parameter set to False but structure is 2D",
		},
		{
			name:   "surface params on bulk",
			pbc:    bulk,
			params: surfaceParams(t, true),
			msg: "3D info given in parameters but structure is 2D\n" +
				"structure is 2D? False\ninput has 2D info? True\n" +
				"set keys are: ['ZPERIODL', '<NRBASIS>', '<RBLEFT>', 'INTERFACE', " +
				"'<NLBASIS>', 'ZPERIODR', '<RBRIGHT>']",
		},
		{
			name:   "wire",
			pbc:    [3]bool{true, false, false},
			params: NewParams(),
			msg: "Structure.pbc is neither (True, True, True) for bulk " +
				"nor (True, True, False) for surface calculation!",
		},
	}
	for _, test := range tests {
		s := fePrimitive()
		s.PBC = test.pbc
		ok, msg := Check2D(s, test.params)
		assert.Equal(t, test.ok, ok, test.name)
		assert.Equal(t, test.msg, msg, test.name)
	}
}

func TestCharge(t *testing.T) {
	for sym, want := range map[string]int{"H": 1, "Fe": 26, "Cu": 29, "Pt": 78, "Lr": 103, Vacancy: 0} {
		got, err := Charge(sym)
		assert.NoError(t, err)
		assert.Equal(t, want, got, sym)
	}
	_, err := Charge("Xx")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	s := fePrimitive()
	s.Sites = append(s.Sites, Site{Kind: "Co"})
	assert.ErrorIs(t, s.Validate(), ErrStructure)

	s = fePrimitive()
	s.Kinds[0].Weights = []float64{0.7, 0.7}
	assert.ErrorIs(t, s.Validate(), ErrStructure)

	s = fePrimitive()
	s.Cell[2] = [3]float64{1, 1, 0}
	assert.ErrorIs(t, s.Validate(), ErrStructure)
	s.PBC[2] = false
	assert.NoError(t, s.Validate())
}

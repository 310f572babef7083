package inputcard

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/kkrtools/kkr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fePrimitive() *Structure {
	s := NewStructure([3][3]float64{
		{0.5, 0.5, 0},
		{1, 0, 0},
		{0, 0, 1},
	})
	s.Append("Fe", [3]float64{0, 0, 0})
	return s
}

func mustParams(t *testing.T, kv ...any) *Params {
	t.Helper()
	p := NewParams()
	for i := 0; i < len(kv); i += 2 {
		require.NoError(t, p.Set(kv[i].(string), kv[i+1]))
	}
	return p
}

func TestGenerate(t *testing.T) {
	p := mustParams(t, "LMAX", 2, "NSPIN", 2, "RMAX", 10.0, "GMAX", 100.0)
	var buf bytes.Buffer
	natyp, nspin, newsosol, err := Generate(p, fePrimitive(), &buf, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, natyp)
	assert.Equal(t, 2, nspin)
	assert.False(t, newsosol)
	want := `ALATBASIS= 1.88972612545783
BRAVAIS
0.50000000000000 0.50000000000000 0.00000000000000
1.00000000000000 0.00000000000000 0.00000000000000
0.00000000000000 0.00000000000000 1.00000000000000
NAEZ= 1
<RBASIS>
0.00000000000000 0.00000000000000 0.00000000000000
CARTESIAN= True
<ZATOM>
26.00000000000000
NSPIN= 2
LMAX= 2
RMAX= 10.00000000000000
GMAX= 100.00000000000000
`
	assert.Equal(t, want, buf.String())
	assert.False(t, p.Has("ALATBASIS"), "input params modified")
}

func TestGenerateMissing(t *testing.T) {
	p := mustParams(t, "LMAX", 2, "NSPIN", 2, "RMAX", 10.0)
	_, _, _, err := Generate(p, fePrimitive(), &bytes.Buffer{}, Options{})
	assert.ErrorIs(t, err, ErrMissingKeyword)
	assert.Contains(t, err.Error(), "GMAX")
}

func TestBuildCPA(t *testing.T) {
	s, err := LoadStructure("testfiles/fecu.yaml")
	require.NoError(t, err)
	p, err := LoadParams("testfiles/params.toml")
	require.NoError(t, err)
	card, err := Build(p, s, Options{Shapes: []int{1, 2, 2}})
	require.NoError(t, err)

	assert.Equal(t, 3, card.NATYP)
	assert.Equal(t, 2, card.NSPIN)
	assert.True(t, card.NewSOSOL)

	natyp, _ := card.Params.Int("NATYP")
	assert.Equal(t, 3, natyp)
	site, _ := card.Params.Get("<SITE>")
	assert.Equal(t, []int{1, 2, 2}, site)
	zatom, _ := card.Params.Get("<ZATOM>")
	assert.Equal(t, []float64{26, 29, 0}, zatom)
	conc, _ := card.Params.Get("<CPA-CONC>")
	assert.InDeltaSlice(t, []float64{1, 0.75, 0.25}, conc, 1e-12)
	rbasis, _ := card.Params.Get("<RBASIS>")
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 0.5}, rbasis.([][]float64)[1], 1e-12)
	alat, _ := card.Params.Float("ALATBASIS")
	assert.InDelta(t, 2.87*AngstromToBohr, alat, 1e-12)

	var buf bytes.Buffer
	require.NoError(t, card.Write(&buf))
	out := buf.String()
	assert.Contains(t, out, "RUNOPT\nNEWSOSOL\n")
	assert.Contains(t, out, "<SHAPE>\n1\n2\n2\n")
	assert.Contains(t, out, "NATYP= 3\n")
	// a bulk structure keeps the left basis in the units it was given
	assert.Contains(t, out, "<RBLEFT>\n0.00000000000000 0.00000000000000 -1.00000000000000\n")
}

func TestBuildShapeCount(t *testing.T) {
	p := mustParams(t, "LMAX", 2, "NSPIN", 1, "RMAX", 10.0, "GMAX", 100.0)
	_, err := Build(p, fePrimitive(), Options{Shapes: []int{1, 1}})
	assert.ErrorIs(t, err, ErrBadValue)
}

func TestBuildSurface(t *testing.T) {
	s := NewStructure([3][3]float64{
		{2, 0, 0},
		{0, 2, 0},
		{0, 0, 0},
	})
	s.PBC = [3]bool{true, true, false}
	s.Append("Cu", [3]float64{0, 0, 1})
	p := mustParams(t,
		"LMAX", 2, "NSPIN", 1, "RMAX", 10.0, "GMAX", 100.0,
		"INTERFACE", true,
		"<NLBASIS>", 1, "<RBLEFT>", []float64{0, 0, -1}, "ZPERIODL", []float64{0, 0, -2},
		"<NRBASIS>", 1, "<RBRIGHT>", []float64{0, 0, 3}, "ZPERIODR", []float64{0, 0, 2},
	)
	card, err := Build(p, s, Options{})
	require.NoError(t, err)

	alat, _ := card.Params.Float("ALATBASIS")
	assert.InDelta(t, 2*AngstromToBohr, alat, 1e-12)
	left, _ := card.Params.Get("<RBLEFT>")
	assert.Equal(t, [][]float64{{0, 0, -0.5}}, left)
	zl, _ := card.Params.Get("ZPERIODL")
	assert.Equal(t, []float64{0, 0, -1}, zl)
	rbasis, _ := card.Params.Get("<RBASIS>")
	assert.Equal(t, [][]float64{{0, 0, 0.5}}, rbasis)

	orig, _ := p.Get("ZPERIODL")
	assert.Equal(t, []float64{0, 0, -2}, orig, "input params modified")

	var buf bytes.Buffer
	require.NoError(t, card.Write(&buf))
	assert.Contains(t, buf.String(), "ZPERIODL= 0.00000000000000 0.00000000000000 -1.00000000000000\n")
}

func TestBuildParentEMIN(t *testing.T) {
	parent := kkr.NewRecord()
	err := json.Unmarshal([]byte(`{"energy_contour_group": {"emin": -0.6}}`), parent)
	require.NoError(t, err)
	p := mustParams(t, "LMAX", 2, "NSPIN", 1, "RMAX", 10.0, "GMAX", 100.0)

	card, err := Build(p, fePrimitive(), Options{Parent: parent})
	require.NoError(t, err)
	emin, ok := card.Params.Float("EMIN")
	assert.True(t, ok)
	assert.Equal(t, -0.6, emin)

	require.NoError(t, p.Set("EMIN", -1))
	card, err = Build(p, fePrimitive(), Options{Parent: parent})
	require.NoError(t, err)
	emin, _ = card.Params.Float("EMIN")
	assert.Equal(t, -1.0, emin)
}

func TestAlat(t *testing.T) {
	s := NewStructure([3][3]float64{
		{1, 0, 0},
		{0, 1.5, 0},
		{0, 0, 4},
	})
	s.Append("Al", [3]float64{})
	card, err := Build(mustParams(t, "LMAX", 2, "NSPIN", 1, "RMAX", 10.0, "GMAX", 100.0),
		s, Options{})
	require.NoError(t, err)
	alat, _ := card.Params.Float("ALATBASIS")
	assert.InDelta(t, 4*AngstromToBohr, alat, 1e-12)

	s.PBC[2] = false
	card, err = Build(card.Params, s, Options{})
	require.NoError(t, err)
	alat, _ = card.Params.Float("ALATBASIS")
	assert.InDelta(t, 1.5*AngstromToBohr, alat, 1e-12)
}

func TestWriteSkipsEmpty(t *testing.T) {
	card := &Card{Params: mustParams(t, "RUNOPT", []string{}, "LMAX", 2)}
	var buf bytes.Buffer
	require.NoError(t, card.Write(&buf))
	assert.Equal(t, "LMAX= 2\n", buf.String())
	assert.False(t, strings.Contains(buf.String(), "RUNOPT"))
}

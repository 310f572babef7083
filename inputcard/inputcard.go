// Package inputcard writes the input deck of the KKR code from a
// crystal structure and a set of keyword values.
package inputcard

import (
	"embed"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/template"

	"github.com/kkrtools/kkr"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//go:embed inputcard.tmpl
var templates embed.FS

var cardTemplate = template.Must(template.ParseFS(templates, "inputcard.tmpl"))

// AngstromToBohr converts lengths from Ångström to Bohr
const AngstromToBohr = 1.8897261254578281

// keywords rescaled from Ångström to alat for surface calculations
var surfaceKeywords = []string{"<RBLEFT>", "<RBRIGHT>", "ZPERIODL", "ZPERIODR"}

type Options struct {
	// Parent is the record of a previous run. Its contour minimum
	// fills EMIN when that is not set.
	Parent *kkr.Record
	// Shapes holds one shape function index per atom type
	Shapes []int
}

// Card is the keyword set derived for one structure
type Card struct {
	Params   *Params
	NATYP    int
	NSPIN    int
	NewSOSOL bool
}

// Build converts the structure to the KKR conventions and merges it
// into a copy of params. The cell and positions are converted to Bohr
// and expressed in units of alat, the length of the longest cell
// vector, where only in-plane vectors count for a surface.
func Build(params *Params, s *Structure, opts Options) (*Card, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	p := params.Clone()

	bravais := mat.NewDense(3, 3, nil)
	for i, row := range s.Cell {
		bravais.SetRow(i, row[:])
	}
	bravais.Scale(AngstromToBohr, bravais)
	alat := Alat(bravais, !s.Is2D())
	bravais.Scale(1/alat, bravais)

	var (
		rbasis [][]float64
		zatom  []float64
		conc   []float64
		sites  []int
	)
	for i, site := range s.Sites {
		pos := append([]float64(nil), site.Position[:]...)
		floats.Scale(AngstromToBohr/alat, pos)
		rbasis = append(rbasis, pos)
		kind, _ := s.kind(site.Kind)
		w := kind.weights()
		for j, sym := range kind.Symbols {
			z, _ := Charge(sym)
			zatom = append(zatom, float64(z))
			conc = append(conc, w[j])
			sites = append(sites, i+1)
		}
		if kind.HasVacancies() {
			zatom = append(zatom, 0)
			conc = append(conc, 1-floats.Sum(w))
			sites = append(sites, i+1)
		}
	}

	set := func(name string, v any) {
		if err := p.Set(name, v); err != nil {
			panic(err)
		}
	}
	set("ALATBASIS", alat)
	set("BRAVAIS", rows(bravais))
	set("NAEZ", len(s.Sites))
	set("<RBASIS>", rbasis)
	set("CARTESIAN", true)
	set("<ZATOM>", zatom)
	natyp := len(zatom)
	if natyp > len(s.Sites) {
		set("NATYP", natyp)
		set("<SITE>", sites)
		set("<CPA-CONC>", conc)
	}
	if opts.Shapes != nil {
		if len(opts.Shapes) != natyp {
			return nil, fmt.Errorf("%w <SHAPE>: %d shapes for %d atom types",
				ErrBadValue, len(opts.Shapes), natyp)
		}
		set("<SHAPE>", opts.Shapes)
	}
	if !p.Has("EMIN") && opts.Parent != nil {
		if emin, ok := opts.Parent.Float("energy_contour_group", "emin"); ok {
			set("EMIN", emin)
		}
	}
	if s.Is2D() {
		rescale(p, AngstromToBohr/alat)
	}

	for _, kw := range Keywords {
		if kw.Mandatory && !p.Has(kw.Name) {
			return nil, fmt.Errorf("%w: %s", ErrMissingKeyword, kw.Name)
		}
	}
	nspin, _ := p.Int("NSPIN")
	runopt, _ := p.Strings("RUNOPT")
	return &Card{
		Params:   p,
		NATYP:    natyp,
		NSPIN:    nspin,
		NewSOSOL: contains(runopt, "NEWSOSOL"),
	}, nil
}

// Generate writes the inputcard for s to w and returns the number of
// atom types, the number of spin channels and whether the spin-orbit
// solver is requested
func Generate(params *Params, s *Structure, w io.Writer, opts Options) (natyp, nspin int, newsosol bool, err error) {
	card, err := Build(params, s, opts)
	if err != nil {
		return 0, 0, false, err
	}
	if err := card.Write(w); err != nil {
		return 0, 0, false, err
	}
	return card.NATYP, card.NSPIN, card.NewSOSOL, nil
}

type entry struct {
	Name  string
	Value string
	Rows  []string
}

// Write renders the card in keyword table order
func (c *Card) Write(w io.Writer) error {
	var entries []entry
	for _, kw := range Keywords {
		v, ok := c.Params.Get(kw.Name)
		if !ok {
			continue
		}
		e := entry{Name: kw.Name}
		if kw.block() {
			e.Rows = blockRows(v)
			if len(e.Rows) == 0 {
				continue
			}
		} else {
			e.Value = inline(v)
		}
		entries = append(entries, e)
	}
	if err := cardTemplate.Execute(w, entries); err != nil {
		return fmt.Errorf("writing inputcard: %w", err)
	}
	return nil
}

// Alat returns the length of the longest row of bravais, ignoring the
// third row unless is3D
func Alat(bravais mat.Matrix, is3D bool) float64 {
	n := 3
	if !is3D {
		n = 2
	}
	var alat float64
	for i := 0; i < n; i++ {
		alat = math.Max(alat, floats.Norm(mat.Row(nil, i, bravais), 2))
	}
	return alat
}

func rescale(p *Params, f float64) {
	for _, name := range surfaceKeywords {
		v, ok := p.Get(name)
		if !ok {
			continue
		}
		switch x := v.(type) {
		case []float64:
			floats.Scale(f, x)
		case [][]float64:
			for _, row := range x {
				floats.Scale(f, row)
			}
		}
	}
}

func rows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	ret := make([][]float64, r)
	for i := range ret {
		ret[i] = mat.Row(nil, i, m)
	}
	return ret
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 14, 64)
}

func format(v any) string {
	switch x := v.(type) {
	case float64:
		return formatFloat(x)
	case bool:
		if x {
			return "True"
		}
		return "False"
	}
	return fmt.Sprint(v)
}

func join[T any](xs []T) string {
	strs := make([]string, len(xs))
	for i, x := range xs {
		strs[i] = format(x)
	}
	return strings.Join(strs, " ")
}

func inline(v any) string {
	switch x := v.(type) {
	case []int:
		return join(x)
	case []float64:
		return join(x)
	}
	return format(v)
}

func blockRows(v any) []string {
	var ret []string
	switch x := v.(type) {
	case [][]float64:
		for _, row := range x {
			ret = append(ret, join(row))
		}
	case []float64:
		for _, f := range x {
			ret = append(ret, format(f))
		}
	case []int:
		for _, i := range x {
			ret = append(ret, format(i))
		}
	case []string:
		// run and test options are fixed width fields of 8 characters
		var b strings.Builder
		for _, s := range x {
			fmt.Fprintf(&b, "%-8s", s)
		}
		if b.Len() > 0 {
			ret = append(ret, strings.TrimRight(b.String(), " "))
		}
	}
	return ret
}

func contains(strs []string, s string) bool {
	for _, str := range strs {
		if strings.TrimSpace(str) == s {
			return true
		}
	}
	return false
}

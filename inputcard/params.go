package inputcard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"

	"github.com/BurntSushi/toml"
)

var (
	ErrUnknownKeyword = errors.New("unknown KKR keyword")
	ErrEmptyUpdate    = errors.New("no keywords given to update")
	ErrMissingKeyword = errors.New("mandatory KKR keyword not set")
	ErrBadValue       = errors.New("bad value for KKR keyword")
)

// Kind is the value type a keyword accepts
type Kind int

const (
	Int Kind = iota
	Float
	Bool
	String
	Ints
	Floats
	Strings
	Vectors
)

type Keyword struct {
	Name      string
	Kind      Kind
	Mandatory bool
	Doc       string
}

// block reports whether the keyword is written as a header line
// followed by its values on the lines below
func (k Keyword) block() bool {
	switch k.Kind {
	case Vectors, Strings:
		return true
	case Ints, Floats:
		return k.Name[0] == '<'
	}
	return false
}

// Keywords is the table of known keywords, in the order they are
// written to the inputcard
var Keywords = []Keyword{
	{"ALATBASIS", Float, true, "lattice constant in Bohr"},
	{"BRAVAIS", Vectors, true, "Bravais vectors in units of alat"},
	{"NAEZ", Int, true, "number of sites in the unit cell"},
	{"<RBASIS>", Vectors, true, "site positions in units of alat"},
	{"CARTESIAN", Bool, true, "positions are Cartesian"},
	{"INTERFACE", Bool, false, "semi-infinite surface geometry"},
	{"<NLBASIS>", Int, false, "number of left basis sites"},
	{"<RBLEFT>", Vectors, false, "positions of the left basis sites"},
	{"ZPERIODL", Floats, false, "periodicity vector of the left half space"},
	{"<NRBASIS>", Int, false, "number of right basis sites"},
	{"<RBRIGHT>", Vectors, false, "positions of the right basis sites"},
	{"ZPERIODR", Floats, false, "periodicity vector of the right half space"},
	{"NATYP", Int, false, "number of atom types for CPA"},
	{"<SITE>", Ints, false, "site of each atom type"},
	{"<CPA-CONC>", Floats, false, "concentration of each atom type"},
	{"<ZATOM>", Floats, true, "nuclear charge of each atom type"},
	{"<SHAPE>", Ints, false, "shape function index of each atom type"},
	{"NSPIN", Int, true, "number of spin channels"},
	{"LMAX", Int, true, "angular momentum cutoff"},
	{"KVREL", Int, false, "relativistic treatment"},
	{"KEXCOR", Int, false, "exchange correlation functional"},
	{"INS", Int, false, "full potential switch"},
	{"RMAX", Float, true, "Ewald cutoff in real space"},
	{"GMAX", Float, true, "Ewald cutoff in reciprocal space"},
	{"RCLUSTZ", Float, false, "screening cluster radius"},
	{"BZDIVIDE", Ints, false, "k-mesh divisions"},
	{"EMIN", Float, false, "lower end of the energy contour"},
	{"EMAX", Float, false, "upper end of the energy contour"},
	{"TEMPR", Float, false, "electronic temperature in K"},
	{"NPOL", Int, false, "number of Matsubara poles"},
	{"NPT1", Int, false, "points on the first contour segment"},
	{"NPT2", Int, false, "points on the second contour segment"},
	{"NPT3", Int, false, "points on the third contour segment"},
	{"NSTEPS", Int, false, "maximum number of iterations"},
	{"IMIX", Int, false, "mixing scheme"},
	{"STRMIX", Float, false, "straight mixing factor"},
	{"BRYMIX", Float, false, "Broyden mixing factor"},
	{"FCM", Float, false, "mixing scale factor"},
	{"QBOUND", Float, false, "convergence bound on the rms error"},
	{"HFIELD", Float, false, "initial external magnetic field"},
	{"LINIPOL", Bool, false, "initial polarization"},
	{"XINIPOL", Ints, false, "polarization direction per atom type"},
	{"RUNOPT", Strings, false, "run options"},
	{"TESTOPT", Strings, false, "test options"},
}

var keywordIndex = func() map[string]int {
	ret := make(map[string]int, len(Keywords))
	for i, k := range Keywords {
		ret[k.Name] = i
	}
	return ret
}()

// Lookup returns the table entry for name
func Lookup(name string) (Keyword, bool) {
	i, ok := keywordIndex[name]
	if !ok {
		return Keyword{}, false
	}
	return Keywords[i], true
}

// Params is an ordered set of keyword values. The order is the order
// in which keywords were first set.
type Params struct {
	keys   []string
	values map[string]any
}

func NewParams() *Params {
	return &Params{values: make(map[string]any)}
}

// Set stores v under name after converting it to the keyword's kind.
// A nil v unsets the keyword.
func (p *Params) Set(name string, v any) error {
	kw, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKeyword, name)
	}
	if v == nil {
		p.unset(name)
		return nil
	}
	val, err := convert(kw.Kind, v)
	if err != nil {
		return fmt.Errorf("%w %s: %v", ErrBadValue, name, err)
	}
	if _, ok := p.values[name]; !ok {
		p.keys = append(p.keys, name)
	}
	p.values[name] = val
	return nil
}

func (p *Params) unset(name string) {
	if _, ok := p.values[name]; !ok {
		return
	}
	delete(p.values, name)
	for i, k := range p.keys {
		if k == name {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

func (p *Params) Get(name string) (any, bool) {
	v, ok := p.values[name]
	return v, ok
}

func (p *Params) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// Keys returns the set keywords in insertion order
func (p *Params) Keys() []string {
	return append([]string(nil), p.keys...)
}

func (p *Params) Int(name string) (int, bool) {
	v, ok := p.values[name].(int)
	return v, ok
}

func (p *Params) Float(name string) (float64, bool) {
	v, ok := p.values[name].(float64)
	return v, ok
}

func (p *Params) Bool(name string) (bool, bool) {
	v, ok := p.values[name].(bool)
	return v, ok
}

func (p *Params) Strings(name string) ([]string, bool) {
	v, ok := p.values[name].([]string)
	return v, ok
}

// Clone returns a deep copy of p
func (p *Params) Clone() *Params {
	ret := NewParams()
	for _, k := range p.keys {
		ret.keys = append(ret.keys, k)
		ret.values[k] = copyValue(p.values[k])
	}
	return ret
}

// Update returns a copy of p with the values in kv applied and the
// keywords whose value actually changed, in sorted order. Unknown
// keywords are rejected before anything is applied.
func Update(p *Params, kv map[string]any) (*Params, []string, error) {
	if len(kv) == 0 {
		return nil, nil, ErrEmptyUpdate
	}
	names := make([]string, 0, len(kv))
	for name := range kv {
		if _, ok := Lookup(name); !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownKeyword, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	ret := p.Clone()
	changed := make([]string, 0)
	for _, name := range names {
		old, had := ret.Get(name)
		if err := ret.Set(name, kv[name]); err != nil {
			return nil, nil, err
		}
		now, has := ret.Get(name)
		if had != has || !reflect.DeepEqual(old, now) {
			changed = append(changed, name)
		}
	}
	return ret, changed, nil
}

// ReadParams decodes a TOML table of keyword values, keeping the
// order of the document
func ReadParams(r io.Reader) (*Params, error) {
	var raw map[string]any
	md, err := toml.NewDecoder(r).Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("decoding params: %w", err)
	}
	p := NewParams()
	for _, key := range md.Keys() {
		if len(key) != 1 {
			continue
		}
		name := key[0]
		if err := p.Set(name, raw[name]); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func LoadParams(filename string) (*Params, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("LoadParams: %w", err)
	}
	defer f.Close()
	return ReadParams(f)
}

func convert(kind Kind, v any) (any, error) {
	switch kind {
	case Int:
		return toInt(v)
	case Float:
		return toFloat(v)
	case Bool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%v is not a bool", v)
		}
		return b, nil
	case String:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%v is not a string", v)
		}
		return s, nil
	case Ints:
		return eachOf(v, toInt)
	case Floats:
		return eachOf(v, toFloat)
	case Strings:
		if s, ok := v.(string); ok {
			return []string{s}, nil
		}
		return eachOf(v, func(e any) (string, error) {
			s, ok := e.(string)
			if !ok {
				return "", fmt.Errorf("%v is not a string", e)
			}
			return s, nil
		})
	case Vectors:
		rows, err := eachOf(v, func(e any) ([]float64, error) {
			return eachOf(e, toFloat)
		})
		if err != nil {
			// a single vector is a one row block
			row, err2 := eachOf(v, toFloat)
			if err2 != nil {
				return nil, err
			}
			rows = [][]float64{row}
		}
		for _, row := range rows {
			if len(row) != 3 {
				return nil, fmt.Errorf("vector %v does not have 3 components", row)
			}
		}
		return rows, nil
	}
	return nil, fmt.Errorf("unhandled kind %d", kind)
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case int32:
		return int(x), nil
	case float64:
		if x != float64(int(x)) {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
		return int(x), nil
	}
	return 0, fmt.Errorf("%v is not an integer", v)
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	}
	return 0, fmt.Errorf("%v is not a number", v)
}

// eachOf converts every element of the slice v with conv
func eachOf[T any](v any, conv func(any) (T, error)) ([]T, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%v is not a list", v)
	}
	ret := make([]T, rv.Len())
	for i := range ret {
		e, err := conv(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		ret[i] = e
	}
	return ret, nil
}

func copyValue(v any) any {
	switch x := v.(type) {
	case []int:
		return append([]int(nil), x...)
	case []float64:
		return append([]float64(nil), x...)
	case []string:
		return append([]string(nil), x...)
	case [][]float64:
		ret := make([][]float64, len(x))
		for i, row := range x {
			ret[i] = append([]float64(nil), row...)
		}
		return ret
	}
	return v
}

package inputcard

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

var ErrStructure = errors.New("invalid structure")

// weightThreshold is the tolerance on the sum of a kind's weights
const weightThreshold = 1e-6

// Vacancy is the symbol of an empty site, with nuclear charge 0
const Vacancy = "X"

// SiteKind is a species that can occupy a site: a single element, an alloy
// of several with weights summing to at most one, or a partial vacancy
// when the weights sum to less than one
type SiteKind struct {
	Name    string    `yaml:"name"`
	Symbols []string  `yaml:"symbols"`
	Weights []float64 `yaml:"weights"`
}

func (k SiteKind) weights() []float64 {
	if len(k.Weights) == 0 && len(k.Symbols) == 1 {
		return []float64{1}
	}
	return k.Weights
}

func (k SiteKind) HasVacancies() bool {
	return floats.Sum(k.weights()) < 1-weightThreshold
}

func (k SiteKind) IsAlloy() bool {
	return len(k.Symbols) > 1
}

type Site struct {
	Kind     string     `yaml:"kind"`
	Position [3]float64 `yaml:"position"`
}

// Structure is a periodic cell in Ångström with its sites
type Structure struct {
	Cell  [3][3]float64 `yaml:"cell"`
	PBC   [3]bool       `yaml:"pbc"`
	Kinds []SiteKind    `yaml:"kinds"`
	Sites []Site        `yaml:"sites"`
}

// NewStructure returns a fully periodic structure with the given cell
func NewStructure(cell [3][3]float64) *Structure {
	return &Structure{
		Cell: cell,
		PBC:  [3]bool{true, true, true},
	}
}

// Append adds an atom of a single element at pos, creating a kind
// named after the element if none exists yet
func (s *Structure) Append(symbol string, pos [3]float64) {
	if _, ok := s.kind(symbol); !ok {
		s.Kinds = append(s.Kinds, SiteKind{
			Name:    symbol,
			Symbols: []string{symbol},
			Weights: []float64{1},
		})
	}
	s.Sites = append(s.Sites, Site{Kind: symbol, Position: pos})
}

func (s *Structure) kind(name string) (SiteKind, bool) {
	for _, k := range s.Kinds {
		if k.Name == name {
			return k, true
		}
	}
	return SiteKind{}, false
}

func (s *Structure) Is2D() bool {
	return !s.PBC[2]
}

// Validate checks that every site names a known kind, that weights
// match the symbols and that the cell is not degenerate
func (s *Structure) Validate() error {
	if len(s.Sites) == 0 {
		return fmt.Errorf("%w: no sites", ErrStructure)
	}
	for _, k := range s.Kinds {
		w := k.weights()
		if len(w) != len(k.Symbols) {
			return fmt.Errorf("%w: kind %s has %d symbols and %d weights",
				ErrStructure, k.Name, len(k.Symbols), len(w))
		}
		for _, sym := range k.Symbols {
			if _, err := Charge(sym); err != nil {
				return fmt.Errorf("%w: kind %s: %v", ErrStructure, k.Name, err)
			}
		}
		if floats.Sum(w) > 1+weightThreshold {
			return fmt.Errorf("%w: weights of kind %s sum to more than 1",
				ErrStructure, k.Name)
		}
	}
	for i, site := range s.Sites {
		if _, ok := s.kind(site.Kind); !ok {
			return fmt.Errorf("%w: site %d has unknown kind %q",
				ErrStructure, i, site.Kind)
		}
	}
	cell := mat.NewDense(3, 3, nil)
	for i, row := range s.Cell {
		cell.SetRow(i, row[:])
	}
	if s.Is2D() {
		// the out of plane vector may be left empty for a surface
		a, b := cell.RawRowView(0), cell.RawRowView(1)
		cross := []float64{
			a[1]*b[2] - a[2]*b[1],
			a[2]*b[0] - a[0]*b[2],
			a[0]*b[1] - a[1]*b[0],
		}
		if floats.Norm(cross, 2) == 0 {
			return fmt.Errorf("%w: in-plane cell vectors are parallel", ErrStructure)
		}
	} else if mat.Det(cell) == 0 {
		return fmt.Errorf("%w: cell vectors are linearly dependent", ErrStructure)
	}
	return nil
}

func ReadStructure(r io.Reader) (*Structure, error) {
	s := NewStructure([3][3]float64{})
	if err := yaml.NewDecoder(r).Decode(s); err != nil {
		return nil, fmt.Errorf("decoding structure: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func LoadStructure(filename string) (*Structure, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("LoadStructure: %w", err)
	}
	defer f.Close()
	return ReadStructure(f)
}

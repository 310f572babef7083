package kkr

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// from https://physics.nist.gov/cgi-bin/cuu/Value?rydhcev
	Ry2eV = 13.605693009
	// tolerance on printed lattice vectors, which carry 8 decimals
	EPS = 1e-6
)

// toFloat converts a list of strings to float64 using parseFloat
func toFloat(strs []string) ([]float64, error) {
	ret := make([]float64, len(strs))
	var err error
	for i, s := range strs {
		ret[i], err = parseFloat(s)
		if err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func Equal(a, b float64) bool {
	return math.Abs(a-b) <= EPS
}

func Identity(n int) *mat.Dense {
	ret := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		ret.Set(i, i, 1.0)
	}
	return ret
}

// rows converts m into a slice of rows for storing in a Record
func rows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	ret := make([][]float64, r)
	for i := 0; i < r; i++ {
		ret[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			ret[i][j] = m.At(i, j)
		}
	}
	return ret
}

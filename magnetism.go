package kkr

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// perAtom reads the natom "index value" rows following the last line
// containing marker
func perAtom(t *Text, marker string, natom int) ([]float64, error) {
	i := t.findLast(marker)
	if i < 0 {
		return nil, fmt.Errorf("%q in %s: %w", marker, t.Name, ErrMarkerNotFound)
	}
	if err := t.span(i+1, natom); err != nil {
		return nil, err
	}
	ret := make([]float64, natom)
	for k := range ret {
		line, err := t.line(i + 1 + k)
		if err != nil {
			return nil, err
		}
		s, err := field(line, 1)
		if err != nil {
			return nil, err
		}
		if ret[k], err = parseFloat(s); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func totalMoment(x *extraction) error {
	if !x.magnetic() {
		return errSkip
	}
	if err := need(x.Main); err != nil {
		return err
	}
	all, err := history(x.Main, "TOTAL mag. moment in unit cell", lastFloat)
	if err != nil {
		return err
	}
	g := x.out.group("magnetism_group")
	g.Set("total_spin_moment", last(all))
	g.Set("total_spin_moment_unit", "mu_Bohr")
	x.out.group("convergence_group").Set("total_spin_moment_all_iterations", all)
	return nil
}

// readAngles reads one "theta phi" row in degrees per atom from the
// noncollinear angles file
func readAngles(t *Text, natom int) ([][]float64, error) {
	if err := need(t); err != nil {
		return nil, err
	}
	var ret [][]float64
	for _, line := range t.Lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: angles %q", ErrMalformed, line)
		}
		angles, err := toFloat(fields[:2])
		if err != nil {
			return nil, err
		}
		ret = append(ret, angles)
	}
	if len(ret) != natom {
		return nil, fmt.Errorf("%w: %d angle pairs for %d atoms in %s",
			ErrMalformed, len(ret), natom, t.Name)
	}
	return ret, nil
}

// spinMoments reads the spin moment of every atom. With noncollinear
// angles present the moment vectors point along them, otherwise along
// z.
func spinMoments(x *extraction) error {
	if !x.magnetic() {
		return errSkip
	}
	if err := need(x.Main); err != nil {
		return err
	}
	natom, err := x.natom()
	if err != nil {
		return err
	}
	moments, err := perAtom(x.Main, "m_spin per atom:", natom)
	if err != nil {
		return err
	}
	angles := make([][]float64, natom)
	for i := range angles {
		angles[i] = []float64{0, 0}
	}
	if x.Nonco != nil {
		if angles, err = readAngles(x.Nonco, natom); err != nil {
			return err
		}
	}
	vectors := make([][]float64, natom)
	for i, m := range moments {
		theta := angles[i][0] * math.Pi / 180
		phi := angles[i][1] * math.Pi / 180
		vectors[i] = []float64{
			m * math.Sin(theta) * math.Cos(phi),
			m * math.Sin(theta) * math.Sin(phi),
			m * math.Cos(theta),
		}
	}
	g := x.out.group("magnetism_group")
	g.Set("spin_moment_per_atom", moments)
	g.Set("spin_moment_vector_per_atom", vectors)
	g.Set("spin_moment_unit", "mu_Bohr")
	return nil
}

// noncoAngles is only read from runs with the new spin-orbit solver,
// the only ones writing it
func noncoAngles(x *extraction) error {
	newsosol, ok := x.rec.Bool("use_newsosol")
	if !x.magnetic() || (ok && !newsosol) {
		return errSkip
	}
	natom, err := x.natom()
	if err != nil {
		return err
	}
	angles, err := readAngles(x.Nonco, natom)
	if err != nil {
		return err
	}
	g := x.out.group("magnetism_group")
	g.Set("spin_moment_angles_per_atom", angles)
	g.Set("spin_moment_angles_per_atom_unit", "degree")
	return nil
}

func orbitalMoments(x *extraction) error {
	if !x.magnetic() {
		return errSkip
	}
	if err := need(x.Main); err != nil {
		return err
	}
	natom, err := x.natom()
	if err != nil {
		return err
	}
	moments, err := perAtom(x.Main, "m_orb per atom:", natom)
	if err != nil {
		return err
	}
	g := x.out.group("magnetism_group")
	g.Set("total_orbital_moment", floats.Sum(moments))
	g.Set("orbital_moment_per_atom", moments)
	g.Set("orbital_moment_unit", "mu_Bohr")
	return nil
}

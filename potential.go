package kkr

import (
	"fmt"
	"strings"
)

// angular momentum letters by l
var orbitalLetters = "spdfghik"

// coreBlock reads the core states of the potential block starting at
// line i. The sixth line below the header holds the number of core
// states, each following line the l and energy of one state.
func coreBlock(t *Text, i int) (ncore int, emax float64, descr string, err error) {
	line, err := t.line(i + 6)
	if err != nil {
		return
	}
	s, err := field(line, 0)
	if err != nil {
		return
	}
	if ncore, err = parseInt(s); err != nil {
		return
	}
	if ncore == 0 {
		return 0, 0, "no core states", nil
	}
	if err = t.span(i+7, ncore); err != nil {
		return
	}
	ls := make([]int, ncore)
	energies := make([]float64, ncore)
	for k := 0; k < ncore; k++ {
		if line, err = t.line(i + 7 + k); err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			err = fmt.Errorf("%w: core state %q", ErrMalformed, line)
			return
		}
		if ls[k], err = parseInt(fields[0]); err != nil {
			return
		}
		if energies[k], err = parseFloat(fields[1]); err != nil {
			return
		}
	}
	top := 0
	for k, e := range energies {
		if e > energies[top] {
			top = k
		}
	}
	l := ls[top]
	if l < 0 || l >= len(orbitalLetters) {
		err = fmt.Errorf("%w: angular momentum %d", ErrMalformed, l)
		return
	}
	// states of one l are counted from n = l+1 upwards
	var n int
	for _, lk := range ls {
		if lk == l {
			n++
		}
	}
	n += l
	return ncore, energies[top], fmt.Sprintf("%d%c", n, orbitalLetters[l]), nil
}

// coreStates reads the highest lying core state of every potential
// block, one per atom and spin
func coreStates(x *extraction) error {
	t := x.Potential
	if err := need(t); err != nil {
		return err
	}
	starts := t.findAll("POTENTIAL")
	if len(starts) == 0 {
		return fmt.Errorf("POTENTIAL in %s: %w", t.Name, ErrMarkerNotFound)
	}
	var (
		ncores = make([]int, 0, len(starts))
		energy = make([]float64, 0, len(starts))
		descr  = make([]string, 0, len(starts))
	)
	for _, i := range starts {
		n, e, d, err := coreBlock(t, i)
		if err != nil {
			return err
		}
		ncores = append(ncores, n)
		energy = append(energy, e)
		descr = append(descr, d)
	}
	g := x.out.group("core_states_group")
	g.Set("number_of_core_states_per_atom", ncores)
	g.Set("energy_highest_lying_core_state_per_atom", energy)
	g.Set("energy_highest_lying_core_state_per_atom_unit", "Rydberg")
	g.Set("descr_highest_lying_core_state_per_atom", descr)
	return nil
}

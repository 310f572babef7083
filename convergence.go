package kkr

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// history collects the value on every line containing marker using
// parse
func history(t *Text, marker string, parse func(string) (float64, error)) (
	[]float64, error) {
	idx := t.findAll(marker)
	if len(idx) == 0 {
		return nil, fmt.Errorf("%q in %s: %w", marker, t.Name, ErrMarkerNotFound)
	}
	ret := make([]float64, 0, len(idx))
	for _, i := range idx {
		v, err := parse(t.Lines[i])
		if err != nil {
			return nil, err
		}
		ret = append(ret, v)
	}
	return ret, nil
}

// tail returns the last n elements of s, which must have at least n
func tail(s []float64, n int) ([]float64, error) {
	if n < 1 || len(s) < n {
		return nil, fmt.Errorf("%w: want %d values, found %d",
			ErrMalformed, n, len(s))
	}
	return s[len(s)-n:], nil
}

func last(s []float64) float64 {
	return s[len(s)-1]
}

// rmsError reads the average rms error of every iteration from the
// main output and the per-atom errors of the last iteration from the
// iteration log
func rmsError(x *extraction) error {
	if err := need(x.Main); err != nil {
		return err
	}
	if err := need(x.Iter0); err != nil {
		return err
	}
	all, err := history(x.Main, "average rms-error", lastFloat)
	if err != nil {
		return err
	}
	const marker = "rms-error for atom="
	var perAtom []float64
	for _, i := range x.Iter0.findAll(marker) {
		line := x.Iter0.Lines[i]
		if !strings.Contains(line, "v+ + v-") {
			continue
		}
		rest, _ := after(line, marker)
		idx, err := column(rest, 0, 4)
		if err != nil {
			return err
		}
		if _, err := parseInt(idx); err != nil {
			return err
		}
		val, err := afterLast(line, "=")
		if err != nil {
			return err
		}
		v, err := parseFloat(val)
		if err != nil {
			return err
		}
		perAtom = append(perAtom, v)
	}
	natoms := len(perAtom) / len(all)
	perAtom, err = tail(perAtom, natoms)
	if err != nil {
		return err
	}
	g := x.out.group("convergence_group")
	g.Set("rms", last(all))
	g.Set("rms_all_iterations", all)
	g.Set("rms_per_atom", perAtom)
	g.Set("rms_unit", "unitless")
	return nil
}

func chargeNeutrality(x *extraction) error {
	if err := need(x.Main); err != nil {
		return err
	}
	all, err := history(x.Main, "charge neutrality in unit cell", lastFloat)
	if err != nil {
		return err
	}
	g := x.out.group("convergence_group")
	g.Set("charge_neutrality", last(all))
	g.Set("charge_neutrality_all_iterations", all)
	g.Set("charge_neutrality_unit", "electrons")
	return nil
}

func fermiEnergy(x *extraction) error {
	if err := need(x.Main); err != nil {
		return err
	}
	all, err := history(x.Main, "E FERMI", func(line string) (float64, error) {
		return floatAfter(line, "FERMI")
	})
	if err != nil {
		return err
	}
	x.out.Set("fermi_energy", last(all))
	x.out.Set("fermi_energy_units", "Ry")
	g := x.out.group("convergence_group")
	g.Set("fermi_energy_all_iterations", all)
	g.Set("fermi_energy_all_iterations_units", "Ry")
	return nil
}

// dosAtFermi sums the spin resolved DOS at the Fermi level within each
// iteration block of the iteration log
func dosAtFermi(x *extraction) error {
	t := x.Iter0
	if err := need(t); err != nil {
		return err
	}
	var (
		all    []float64
		nspins []int
	)
	for _, line := range t.Lines {
		if strings.Contains(line, "ITERATION :") {
			all = append(all, 0)
			nspins = append(nspins, 0)
			continue
		}
		if len(all) == 0 || !strings.Contains(line, "DOS(E_F) =") {
			continue
		}
		v, err := floatAfter(line, "DOS(E_F) =")
		if err != nil {
			return err
		}
		all[len(all)-1] += v
		nspins[len(nspins)-1]++
	}
	// drop a trailing block cut off before its DOS was written
	for len(nspins) > 0 && nspins[len(nspins)-1] == 0 {
		all, nspins = all[:len(all)-1], nspins[:len(nspins)-1]
	}
	if len(all) == 0 {
		return fmt.Errorf("DOS(E_F) in %s: %w", t.Name, ErrMarkerNotFound)
	}
	x.out.Set("dos_at_fermi_energy", last(all))
	x.out.Set("number_of_spin_channels_found", nspins[len(nspins)-1])
	g := x.out.group("convergence_group")
	g.Set("dos_at_fermi_energy_all_iterations", all)
	return nil
}

func totalEnergy(x *extraction) error {
	if err := need(x.Main); err != nil {
		return err
	}
	all, err := history(x.Main, "TOTAL ENERGY in ryd.", lastFloat)
	if err != nil {
		return err
	}
	etot := last(all)
	x.out.Set("energy", etot*Ry2eV)
	x.out.Set("energy_unit", "eV")
	x.out.Set("total_energy_Ry", etot)
	x.out.Set("total_energy_Ry_unit", "Rydberg")
	g := x.out.group("convergence_group")
	g.Set("total_energy_Ry_all_iterations", all)
	return nil
}

func singleParticleEnergies(x *extraction) error {
	if err := need(x.Iter0); err != nil {
		return err
	}
	natom, err := x.natom()
	if err != nil {
		return err
	}
	const marker = "band energy per atom ="
	all, err := history(x.Iter0, marker, func(line string) (float64, error) {
		return floatAfter(line, marker)
	})
	if err != nil {
		return err
	}
	esp, err := tail(all, natom)
	if err != nil {
		return err
	}
	x.out.Set("single_particle_energies", floats.ScaleTo(make([]float64, len(esp)), Ry2eV, esp))
	x.out.Set("single_particle_energies_unit", "eV")
	return nil
}

// charges reads the per-atom charges of the last iteration. The number
// of atom types follows from the number of iterations already read with
// the rms error.
func charges(x *extraction) error {
	t := x.Iter0
	if err := need(t); err != nil {
		return err
	}
	rmsAll, ok := x.rec.Floats("convergence_group", "rms_all_iterations")
	if !ok || len(rmsAll) == 0 {
		return fmt.Errorf("number of iterations: %w", ErrMarkerNotFound)
	}
	read := func(marker string) ([]float64, error) {
		return history(t, marker, func(line string) (float64, error) {
			return floatAfter(line, marker)
		})
	}
	ws, err := read("charge in wigner seitz cell =")
	if err != nil {
		return err
	}
	nuclear, err := read("nuclear charge =")
	if err != nil {
		return err
	}
	core, err := read("core charge =")
	if err != nil {
		return err
	}
	natyp := len(nuclear) / len(rmsAll)
	if ws, err = tail(ws, natyp); err != nil {
		return err
	}
	if core, err = tail(core, natyp); err != nil {
		return err
	}
	valence := make([]float64, natyp)
	floats.SubTo(valence, ws, core)
	x.out.Set("total_charge_per_atom", ws)
	x.out.Set("charge_core_states_per_atom", core)
	x.out.Set("charge_valence_states_per_atom", valence)
	x.out.Set("total_charge_per_atom_unit", "electron charge")
	x.out.Set("charge_core_states_per_atom_unit", "electron charge")
	x.out.Set("charge_valence_states_per_atom_unit", "electron charge")
	return nil
}

// iterations reads the last iteration header of t, "ITERATION : n of
// max. m"
func iterations(t *Text) (n, nmax int, err error) {
	if err = need(t); err != nil {
		return
	}
	i := t.findLast("ITERATION :")
	if i < 0 {
		err = fmt.Errorf("ITERATION in %s: %w", t.Name, ErrMarkerNotFound)
		return
	}
	rest, _ := after(t.Lines[i], "ITERATION :")
	var s string
	if s, err = field(rest, 0); err != nil {
		return
	}
	if n, err = parseInt(s); err != nil {
		return
	}
	if s, err = field(rest, 3); err != nil {
		return
	}
	nmax, err = parseInt(s)
	return
}

// mixing reads the values found on line offset below the line
// containing marker
func mixing(t *Text, marker string, offset int) ([]string, error) {
	i, err := t.mustFind(marker)
	if err != nil {
		return nil, err
	}
	line, err := t.line(i + offset)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no values below %q", ErrMalformed, marker)
	}
	return fields, nil
}

// scfInfo summarizes the SCF cycle: the iteration count from the
// iteration log or, failing that, the auxiliary log, convergence from
// the main output and the mixing setup from the init log
func scfInfo(x *extraction) error {
	if err := need(x.Main); err != nil {
		return err
	}
	if err := need(x.Init); err != nil {
		return err
	}
	niter, nmax, err := iterations(x.Iter0)
	if err != nil {
		if niter, nmax, err = iterations(x.Aux); err != nil {
			return err
		}
	}
	g := x.out.group("convergence_group")
	g.Set("number_of_iterations", niter)
	g.Set("number_of_iterations_max", nmax)
	g.Set("calculation_converged", x.Main.find("SCF ITERATION CONVERGED") >= 0)
	g.Set("nsteps_exhausted",
		x.Main.find("NUMBER OF SCF STEPS EXHAUSTED") >= 0)

	ints := []struct {
		marker, key string
		offset, col int
	}{
		{"IMIX    IGF    ICC", "imix", 1, 0},
		{"IMIX    IGF    ICC", "idtbry", 4, 0},
	}
	for _, f := range ints {
		fields, err := mixing(x.Init, f.marker, f.offset)
		if err != nil {
			return err
		}
		v, err := parseInt(fields[f.col])
		if err != nil {
			return err
		}
		g.Set(f.key, v)
	}
	reals := []struct {
		marker, key string
		offset, col int
	}{
		{"STRMIX        FCM       QBOUND", "strmix", 1, 0},
		{"STRMIX        FCM       QBOUND", "fcm", 1, 1},
		{"STRMIX        FCM       QBOUND", "qbound", 1, 2},
		{"STRMIX        FCM       QBOUND", "brymix", 4, 0},
	}
	for _, f := range reals {
		fields, err := mixing(x.Init, f.marker, f.offset)
		if err != nil {
			return err
		}
		if f.col >= len(fields) {
			return fmt.Errorf("%w: no %s below %q", ErrMalformed, f.key, f.marker)
		}
		v, err := parseFloat(fields[f.col])
		if err != nil {
			return err
		}
		g.Set(f.key, v)
	}
	return nil
}

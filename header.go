package kkr

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// versionInfo reads the build information printed at the top of the
// main output
func versionInfo(x *extraction) error {
	if err := need(x.Main); err != nil {
		return err
	}
	g := x.out.group("code_info_group")
	for _, f := range []struct{ marker, key string }{
		{"Code version:", "code_version"},
		{"Compile options:", "compile_options"},
		{"serial number for files:", "calculation_serial_number"},
	} {
		i, err := x.Main.mustFind(f.marker)
		if err != nil {
			return err
		}
		val, _ := after(x.Main.Lines[i], ":")
		g.Set(f.key, strings.TrimSpace(val))
	}
	return nil
}

// spinAtoms reads the number of spin channels and atoms from the line
// after their labels, and whether the new spin-orbit solver is on
func spinAtoms(x *extraction) error {
	t := x.Init
	if err := need(t); err != nil {
		return err
	}
	for _, f := range []struct{ marker, key string }{
		{"NSPIN", "nspin"},
		{"NATYP", "number_of_atoms_in_unit_cell"},
	} {
		i, err := t.mustFind(f.marker)
		if err != nil {
			return err
		}
		line, err := t.line(i + 1)
		if err != nil {
			return err
		}
		s, err := field(line, 0)
		if err != nil {
			return err
		}
		v, err := parseInt(s)
		if err != nil {
			return err
		}
		x.out.Set(f.key, v)
	}
	x.out.Set("use_newsosol", t.find("NEWSOSOL") >= 0)
	return nil
}

func searchWarnings(x *extraction) error {
	if err := need(x.Main); err != nil {
		return err
	}
	list := make([]string, 0)
	for _, i := range x.Main.findAll("WARNING") {
		list = append(list, strings.TrimSpace(x.Main.Lines[i]))
	}
	g := x.out.group("warnings_group")
	g.Set("number_of_warnings", len(list))
	g.Set("warnings_list", list)
	return nil
}

// contour point rows are I5 followed by four D15.8 fields
var contourWidths = []int{5, 15, 15, 15, 15}

func energyContour(x *extraction) error {
	t := x.Init
	if err := need(t); err != nil {
		return err
	}
	g := x.out.group("energy_contour_group")

	i, err := t.mustFind("E min")
	if err != nil {
		return err
	}
	emin, err := floatAfter(t.Lines[i], "=")
	if err != nil {
		return err
	}
	g.Set("emin", emin)
	g.Set("emin_unit", "Rydberg")

	if i, err = t.mustFind("Temperature"); err != nil {
		return err
	}
	temp, err := floatAfter(t.Lines[i], "=")
	if err != nil {
		return err
	}

	if i, err = t.mustFind("Number of energy points :"); err != nil {
		return err
	}
	nepts, err := intAfter(t.Lines[i], "Number of energy points :")
	if err != nil {
		return err
	}
	g.Set("number_of_energy_points", nepts)
	g.Set("temperature", temp)
	g.Set("temperature_unit", "Kelvin")

	if i, err = t.mustFind("poles ="); err != nil {
		return err
	}
	npol, err := intAfter(t.Lines[i], "poles =")
	if err != nil {
		return err
	}
	line, err := t.line(i + 2)
	if err != nil {
		return err
	}
	g.Set("npol", npol)
	for _, n := range []string{"N1", "N2", "N3"} {
		v, err := intAfter(line, n+" =")
		if err != nil {
			return err
		}
		g.Set(strings.ToLower(n), v)
	}

	points := make([][]float64, 0)
	weights := make([][]float64, 0)
	if npol != 0 {
		start, err := t.mustFind("Energy contour points")
		if err != nil {
			return err
		}
		if err := t.span(start+1, nepts); err != nil {
			return err
		}
		for ie := 0; ie < nepts; ie++ {
			line, err := t.line(start + 1 + ie)
			if err != nil {
				return err
			}
			cols, err := columns(line, contourWidths...)
			if err != nil {
				return err
			}
			vals, err := toFloat(cols[1:])
			if err != nil {
				return err
			}
			points = append(points, vals[:2])
			weights = append(weights, vals[2:])
		}
	}
	g.Set("epoints_contour", points)
	g.Set("epoints_contour_unit", "Rydberg")
	g.Set("epoints_weights", weights)
	return nil
}

func alat(x *extraction) error {
	t := x.Init
	if err := need(t); err != nil {
		return err
	}
	i, err := t.mustFind("Lattice constants :")
	if err != nil {
		return err
	}
	rest, _ := after(t.Lines[i], ":")
	parts := strings.Split(rest, "=")
	if len(parts) < 3 {
		return fmt.Errorf("%w: lattice constants %q", ErrMalformed, t.Lines[i])
	}
	var vals [2]float64
	for k := range vals {
		s, err := field(parts[k+1], 0)
		if err != nil {
			return err
		}
		if vals[k], err = parseFloat(s); err != nil {
			return err
		}
	}
	x.out.Set("alat_internal", vals[0])
	x.out.Set("alat_internal_unit", "a_Bohr")
	x.out.Set("two_pi_over_alat_internal", vals[1])
	x.out.Set("two_pi_over_alat_internal_unit", "1/a_Bohr")
	return nil
}

// kmesh reads the k-point count of every mesh from the init log and
// the mesh used for each energy point of the first iteration from the
// iteration log
func kmesh(x *extraction) error {
	if err := need(x.Init); err != nil {
		return err
	}
	if err := need(x.Iter0); err != nil {
		return err
	}
	const marker = "number of different k-meshes :"
	i, err := x.Init.mustFind(marker)
	if err != nil {
		return err
	}
	nmesh, err := intAfter(x.Init.Lines[i], marker)
	if err != nil {
		return err
	}
	if err := x.Init.span(i+2, nmesh); err != nil {
		return err
	}
	nkpts := make([]int, 0, nmesh)
	for k := 0; k < nmesh; k++ {
		line, err := x.Init.line(i + 2 + k)
		if err != nil {
			return err
		}
		s, err := field(line, 1)
		if err != nil {
			return err
		}
		n, err := parseInt(s)
		if err != nil {
			return err
		}
		nkpts = append(nkpts, n)
	}

	var (
		meshes []int
		prev   int
	)
	for _, i := range x.Iter0.findAll("k-mesh =") {
		line := x.Iter0.Lines[i]
		ie, err := intAfter(line, "IE =")
		if err != nil {
			return err
		}
		if ie <= prev {
			break
		}
		prev = ie
		m, err := intAfter(line, "k-mesh =")
		if err != nil {
			return err
		}
		meshes = append(meshes, m)
	}
	if len(meshes) == 0 {
		return fmt.Errorf("k-mesh per energy point: %w", ErrMarkerNotFound)
	}

	g := x.out.group("kmesh_group")
	g.Set("number_different_kmeshes", nmesh)
	g.Set("number_kpoints_per_kmesh", nkpts)
	g.Set("kmesh_energypoint", meshes)
	return nil
}

// symmetry table rows are I4,1X,A10,I3,3F10.5,3X,L1
var symmetryWidths = []int{4, 1, 10, 3, 10, 10, 10, 3, 1}

func symmetries(x *extraction) error {
	t := x.Init
	if err := need(t); err != nil {
		return err
	}
	const (
		foundMarker = "symmetries found for this lattice:"
		usedMarker  = "symmetries will be used"
	)
	i, err := t.mustFind(foundMarker)
	if err != nil {
		return err
	}
	nfound, err := intAfter(t.Lines[i], foundMarker)
	if err != nil {
		return err
	}
	if i, err = t.mustFind(usedMarker); err != nil {
		return err
	}
	before, _, _ := strings.Cut(t.Lines[i], usedMarker)
	s, err := field(before, -1)
	if err != nil {
		return err
	}
	nused, err := parseInt(s)
	if err != nil {
		return err
	}

	start, err := t.mustFind("<SYMTAXK>")
	if err != nil {
		return err
	}
	desc := NewRecord()
	for k := 0; k < nused; k++ {
		line, err := t.line(start + 4 + k)
		if err != nil {
			return err
		}
		cols, err := columns(line, symmetryWidths...)
		if err != nil {
			return err
		}
		inv, err := parseInt(cols[3])
		if err != nil {
			return err
		}
		euler, err := toFloat(cols[4:7])
		if err != nil {
			return err
		}
		var unitary int
		switch strings.TrimSpace(cols[8]) {
		case "T":
			unitary = 1
		case "F":
		default:
			return fmt.Errorf("%w: logical %q in %q", ErrMalformed, cols[8], line)
		}
		sym := NewRecord()
		sym.Set("has_inversion", inv)
		sym.Set("is_unitary", unitary)
		sym.Set("euler_angles", euler)
		desc.Set(strings.TrimSpace(cols[2]), sym)
	}

	g := x.out.group("symmetries_group")
	g.Set("number_of_lattice_symmetries", nfound)
	g.Set("number_of_used_symmetries", nused)
	g.Set("symmetry_description", desc)
	return nil
}

func ewald(x *extraction) error {
	t := x.Init
	if err := need(t); err != nil {
		return err
	}
	var mode string
	i := t.find("< LATTICE3D >")
	if i >= 0 {
		mode = "3D"
	} else if i = t.find("< LATTICE2D >"); i >= 0 {
		mode = "2D"
	} else {
		return fmt.Errorf("lattice mode: %w", ErrMarkerNotFound)
	}
	j := t.findFrom("R max =", i+1)
	if j < 0 {
		return fmt.Errorf("R max: %w", ErrMarkerNotFound)
	}
	rcut, err := floatAfter(t.Lines[j], "R max =")
	if err != nil {
		return err
	}
	g := x.out.group("ewald_sum_group")
	g.Set("ewald_summation_mode", mode)
	g.Set("rcut", rcut)
	g.Set("rcut_unit", "alat")
	return nil
}

// cellVectors reads the three rows following the line after marker,
// each ending in the three vector components
func cellVectors(t *Text, marker string) (*mat.Dense, error) {
	i, err := t.mustFind(marker)
	if err != nil {
		return nil, err
	}
	m := mat.NewDense(3, 3, nil)
	for r := 0; r < 3; r++ {
		line, err := t.line(i + 2 + r)
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: cell vector %q", ErrMalformed, line)
		}
		row, err := toFloat(fields[len(fields)-3:])
		if err != nil {
			return nil, err
		}
		m.SetRow(r, row)
	}
	return m, nil
}

// latticeVectors reads the direct and reciprocal cell and rejects the
// pair unless a_i . b_j = delta_ij for every non-zero b_j, with a in
// units of alat and b in units of 2pi/alat
func latticeVectors(x *extraction) error {
	t := x.Init
	if err := need(t); err != nil {
		return err
	}
	direct, err := cellVectors(t, "Direct lattice cell vectors")
	if err != nil {
		return err
	}
	recip, err := cellVectors(t, "Reciprocal lattice cell vectors")
	if err != nil {
		return err
	}
	var prod mat.Dense
	prod.Mul(direct, recip.T())
	id := Identity(3)
	for j := 0; j < 3; j++ {
		if floats.Norm(recip.RawRowView(j), 2) < EPS {
			continue
		}
		for i := 0; i < 3; i++ {
			if !Equal(prod.At(i, j), id.At(i, j)) {
				return fmt.Errorf("%w: direct and reciprocal cells "+
					"do not match, a_%d.b_%d = %g",
					ErrMalformed, i+1, j+1, prod.At(i, j))
			}
		}
	}
	x.out.Set("direct_bravais_matrix", rows(direct))
	x.out.Set("direct_bravais_matrix_unit", "alat")
	x.out.Set("reciprocal_bravais_matrix", rows(recip))
	x.out.Set("reciprocal_bravais_matrix_unit", "2*pi / alat")
	return nil
}

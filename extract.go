package kkr

import (
	"fmt"
)

// extraction is what a single extractor works on: the sources, the
// fields extracted before it and a scratch record for its own fields
type extraction struct {
	*Sources
	rec *Record
	out *Record
}

// natom returns the number of atoms from the header
func (x *extraction) natom() (int, error) {
	n, ok := x.rec.Int("number_of_atoms_in_unit_cell")
	if !ok || n < 1 {
		return 0, fmt.Errorf("number of atoms: %w", ErrMarkerNotFound)
	}
	return n, nil
}

// magnetic reports whether spin resolved fields can be expected. An
// unknown nspin counts as magnetic.
func (x *extraction) magnetic() bool {
	nspin, ok := x.rec.Int("nspin")
	return !ok || nspin > 1
}

type extractor struct {
	what     string
	severity Severity
	check    *ConsistencyCheck
	// readin marks fields read from the SCF iterations
	readin bool
	run    func(x *extraction) error
}

func (e extractor) issue() Issue {
	return Issue{
		Severity: e.severity,
		Message:  msgPrefix + e.what,
		Check:    e.check,
	}
}

// extractors run in this order. The order is also the order of their
// issues and decides which source wins for a field.
var extractors = []extractor{
	{what: "Version Info", severity: Critical, run: versionInfo},
	{what: "nspin/natom", severity: Critical, run: spinAtoms},
	{what: "search for warnings", severity: Critical, run: searchWarnings},
	{what: "timings", severity: Critical, run: timings},
	{what: "energy contour", severity: Critical, run: energyContour},
	{what: "alat, 2*pi/alat", severity: Critical, run: alat},
	{what: "kmesh", severity: Critical, run: kmesh},
	{what: "symmetries", severity: Critical, run: symmetries},
	{what: "ewald summation for Madelung potential", severity: Critical,
		run: ewald},
	{what: "lattice vectors (direct/reciprocal)", severity: Critical,
		run: latticeVectors},
	{what: "rms-error", severity: Critical, readin: true, run: rmsError},
	{what: "charge neutrality", severity: Critical, readin: true,
		run: chargeNeutrality},
	{what: "total magnetic moment", severity: Reviewable,
		check: CheckSpinBlocks, readin: true, run: totalMoment},
	{what: "spin moment per atom", severity: Reviewable,
		check: CheckSpinBlocks, readin: true, run: spinMoments},
	{what: "noncollinear angles", severity: Reviewable,
		check: CheckNewSOSOL, readin: true, run: noncoAngles},
	{what: "orbital moment", severity: Reviewable,
		check: CheckNewSOSOL, readin: true, run: orbitalMoments},
	{what: "EF", severity: Critical, readin: true, run: fermiEnergy},
	{what: "DOS@EF", severity: Critical, readin: true, run: dosAtFermi},
	{what: "total energy", severity: Critical, readin: true,
		run: totalEnergy},
	{what: "single particle energies", severity: Critical, readin: true,
		run: singleParticleEnergies},
	{what: "charges", severity: Critical, readin: true, run: charges},
	{what: "scfinfo", severity: Critical, readin: true, run: scfInfo},
	{what: "core_states", severity: Critical, run: coreStates},
}

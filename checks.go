package kkr

// The checks below decide whether a Reviewable issue is a real error.
// A field they need that is missing from the record counts as "the
// issue matters".
var (
	// CheckNewSOSOL holds unless the run is known not to use the new
	// spin-orbit solver, which is the only one writing the
	// noncollinear angles.
	CheckNewSOSOL = &ConsistencyCheck{
		Name: "newsosol",
		Holds: func(rec *Record) bool {
			newsosol, ok := rec.Bool("use_newsosol")
			return !ok || newsosol
		},
	}

	// CheckSpinBlocks holds unless the header declares a single spin
	// channel or the iteration log shows a different number of spin
	// channels than the header declares.
	CheckSpinBlocks = &ConsistencyCheck{
		Name: "spin-blocks",
		Holds: func(rec *Record) bool {
			nspin, ok := rec.Int("nspin")
			if !ok {
				return true
			}
			if nspin == 1 {
				return false
			}
			found, ok := rec.Int("number_of_spin_channels_found")
			return !ok || found == nspin
		},
	}
)

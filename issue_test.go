package kkr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSoften(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{
			"Error! NONCO_ANGELS_OUT not found nonco_angle_out.dat",
			"Warning! NONCO_ANGELS_OUT not found nonco_angle_out.dat",
		},
		{
			"Error parsing output of KKR: orbital moment",
			"Warning parsing output of KKR: orbital moment",
		},
		{"Error! Error", "Warning! Warning"},
		{"no severity word", "no severity word"},
	}
	for _, test := range tests {
		if got := Soften(test.in); got != test.want {
			t.Errorf("got %q, wanted %q\n", got, test.want)
		}
	}
}

func TestChecks(t *testing.T) {
	rec := func(kv ...any) *Record {
		r := NewRecord()
		for i := 0; i < len(kv); i += 2 {
			r.Set(kv[i].(string), kv[i+1])
		}
		return r
	}
	tests := []struct {
		check *ConsistencyCheck
		rec   *Record
		want  bool
	}{
		{CheckNewSOSOL, rec(), true},
		{CheckNewSOSOL, rec("use_newsosol", true), true},
		{CheckNewSOSOL, rec("use_newsosol", false), false},
		{CheckSpinBlocks, rec(), true},
		{CheckSpinBlocks, rec("nspin", 1), false},
		{CheckSpinBlocks, rec("nspin", 2), true},
		{CheckSpinBlocks, rec("nspin", 2, "number_of_spin_channels_found", 2), true},
		{CheckSpinBlocks, rec("nspin", 2, "number_of_spin_channels_found", 1), false},
	}
	for i, test := range tests {
		if got := test.check.Holds(test.rec); got != test.want {
			t.Errorf("%d %s: got %v, wanted %v\n",
				i, test.check.Name, got, test.want)
		}
	}
}

func TestClassify(t *testing.T) {
	rec := NewRecord()
	rec.Set("nspin", 2)
	rec.Set("use_newsosol", false)
	issues := []Issue{
		{Severity: Critical, Message: "Error parsing output of KKR: EF"},
		{
			Severity: Reviewable,
			Message:  "Error parsing output of KKR: orbital moment",
			Check:    CheckNewSOSOL,
		},
		{
			Severity: Reviewable,
			Message:  "Error parsing output of KKR: spin moment per atom",
			Check:    CheckSpinBlocks,
		},
		{Severity: Critical, Message: "Critical error! OUT_POTENTIAL not found out_potential"},
		{
			Severity: Reviewable,
			Message:  "Error! NONCO_ANGELS_OUT not found nonco_angle_out.dat",
			Check:    CheckNewSOSOL,
		},
	}
	errs, warns := Classify(rec, issues)
	wantErrs := []string{
		"Error parsing output of KKR: EF",
		"Error parsing output of KKR: spin moment per atom",
		"Critical error! OUT_POTENTIAL not found out_potential",
	}
	wantWarns := []string{
		"Warning parsing output of KKR: orbital moment",
		"Warning! NONCO_ANGELS_OUT not found nonco_angle_out.dat",
	}
	if diff := cmp.Diff(wantErrs, errs); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantWarns, warns); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifyEmpty(t *testing.T) {
	errs, warns := Classify(NewRecord(), nil)
	if errs == nil || len(errs) != 0 {
		t.Errorf("got %#v, wanted an empty list\n", errs)
	}
	if warns != nil {
		t.Errorf("got %#v, wanted nil\n", warns)
	}
}

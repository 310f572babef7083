package kkr

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestRecordSet(t *testing.T) {
	rec := NewRecord()
	if !rec.Set("nspin", 2) {
		t.Error("first Set refused")
	}
	if rec.Set("nspin", 1) {
		t.Error("second Set accepted")
	}
	got, _ := rec.Int("nspin")
	if want := 2; got != want {
		t.Errorf("got %v, wanted %v\n", got, want)
	}
	if _, ok := rec.Float("missing"); ok {
		t.Error("missing key reported present")
	}
	if _, ok := rec.Str("nspin"); ok {
		t.Error("int reported as string")
	}
}

func TestRecordLookup(t *testing.T) {
	rec := NewRecord()
	rec.group("convergence_group").Set("rms", 3e-4)
	got, ok := rec.Float("convergence_group", "rms")
	if !ok || got != 3e-4 {
		t.Errorf("got %v, %v, wanted %v\n", got, ok, 3e-4)
	}
	if _, ok := rec.Lookup("convergence_group", "rms", "deeper"); ok {
		t.Error("lookup through a leaf succeeded")
	}
	if _, ok := rec.Lookup(); ok {
		t.Error("empty path succeeded")
	}
}

func TestRecordMerge(t *testing.T) {
	dst := NewRecord()
	dst.Set("parser_version", "0.3")
	dst.group("convergence_group").Set("rms", 1.0)

	src := NewRecord()
	src.Set("parser_version", "overwritten")
	src.group("convergence_group").Set("rms", 2.0)
	src.group("convergence_group").Set("charge_neutrality", 0.5)
	src.Set("fermi_energy", 0.53)

	dst.merge(src)
	got := dst.Map()
	want := map[string]any{
		"parser_version": "0.3",
		"convergence_group": map[string]any{
			"rms":               1.0,
			"charge_neutrality": 0.5,
		},
		"fermi_energy": 0.53,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("merge mismatch (-want +got):\n%s", diff)
	}
	wantKeys := []string{"parser_version", "convergence_group", "fermi_energy"}
	if !reflect.DeepEqual(dst.Keys(), wantKeys) {
		t.Errorf("got %v, wanted %v\n", dst.Keys(), wantKeys)
	}
}

func TestRecordClone(t *testing.T) {
	rec := NewRecord()
	rec.group("magnetism_group").Set("total_spin_moment", 4.41)
	c := rec.Clone()
	c.group("magnetism_group").Set("total_orbital_moment", 0.13)
	if rec.group("magnetism_group").Has("total_orbital_moment") {
		t.Error("clone shares groups with the original")
	}
	var nilRec *Record
	if got := nilRec.Clone().Len(); got != 0 {
		t.Errorf("got %v, wanted 0\n", got)
	}
}

func TestRecordJSON(t *testing.T) {
	rec := NewRecord()
	rec.Set("parser_version", "0.3")
	rec.Set("nspin", 2)
	g := rec.group("energy_contour_group")
	g.Set("npol", 2)
	g.Set("epoints_contour", [][]float64{{-0.6, 0}})
	rec.Set("use_newsosol", true)

	got, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"parser_version":"0.3","nspin":2,"energy_contour_group":` +
		`{"npol":2,"epoints_contour":[[-0.6,0]]},"use_newsosol":true}`
	if string(got) != want {
		t.Errorf("got\n%s, wanted\n%s\n", got, want)
	}

	back := NewRecord()
	if err := json.Unmarshal(got, back); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back.Keys(), rec.Keys()) {
		t.Errorf("got %v, wanted %v\n", back.Keys(), rec.Keys())
	}
	if n, ok := back.Int("energy_contour_group", "npol"); !ok || n != 2 {
		t.Errorf("got %v, %v, wanted 2\n", n, ok)
	}
}

func TestRecordYAML(t *testing.T) {
	rec := NewRecord()
	rec.Set("nspin", 1)
	rec.Set("alat_internal", 4.83)
	rec.group("kmesh_group").Set("number_kpoints_per_kmesh", []int{64})
	got, err := yaml.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	want := `nspin: 1
alat_internal: 4.83
kmesh_group:
    number_kpoints_per_kmesh:
        - 64
`
	if string(got) != want {
		t.Errorf("got\n%s, wanted\n%s\n", got, want)
	}
}

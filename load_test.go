package kkr

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfig(t *testing.T) {
	got, err := LoadConfig("testfiles/kkr.toml")
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		ParserVersion:            "0.3.1",
		CalculationPluginVersion: CalculationPluginVersion,
		SkipReadin:               true,
		Files: FileNames{
			RoleMain:      "out_kkr.log",
			RoleInit:      "output.0.txt",
			RoleIter0:     "output.000.txt",
			RoleAux:       "output.2.txt",
			RolePotential: "out_potential",
			RoleTiming:    "out_timing.000.txt",
			RoleNonco:     "nonco_angles.dat",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestReadConfig(t *testing.T) {
	got, err := ReadConfig(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(DefaultConfig(), got); diff != "" {
		t.Errorf("empty config mismatch (-want +got):\n%s", diff)
	}
	if _, err := ReadConfig(strings.NewReader("skip_readin = maybe")); err == nil {
		t.Error("invalid TOML accepted")
	}
}

func TestSeed(t *testing.T) {
	seed := DefaultConfig().Seed()
	want := []string{"parser_version", "calculation_plugin_version"}
	if diff := cmp.Diff(want, seed.Keys()); diff != "" {
		t.Errorf("seed keys mismatch (-want +got):\n%s", diff)
	}
	if got, _ := seed.Str("parser_version"); got != ParserVersion {
		t.Errorf("got %v, wanted %v\n", got, ParserVersion)
	}
}

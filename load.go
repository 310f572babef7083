package kkr

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

const (
	ParserVersion            = "0.3"
	CalculationPluginVersion = "0.3"
)

// RawConf is the TOML layout of a parser configuration file
type RawConf struct {
	ParserVersion            string `toml:"parser_version"`
	CalculationPluginVersion string `toml:"calculation_plugin_version"`
	SkipReadin               bool   `toml:"skip_readin"`
	Files                    struct {
		Main      string `toml:"main"`
		Init      string `toml:"init"`
		Iter0     string `toml:"iter0"`
		Aux       string `toml:"aux"`
		Potential string `toml:"potential"`
		Timing    string `toml:"timing"`
		Nonco     string `toml:"nonco"`
	} `toml:"files"`
}

func (rc RawConf) ToConfig() (conf Config) {
	conf.ParserVersion = rc.ParserVersion
	conf.CalculationPluginVersion = rc.CalculationPluginVersion
	conf.SkipReadin = rc.SkipReadin
	conf.Files = FileNames{
		RoleMain:      rc.Files.Main,
		RoleInit:      rc.Files.Init,
		RoleIter0:     rc.Files.Iter0,
		RoleAux:       rc.Files.Aux,
		RolePotential: rc.Files.Potential,
		RoleTiming:    rc.Files.Timing,
		RoleNonco:     rc.Files.Nonco,
	}
	return
}

type Config struct {
	ParserVersion            string
	CalculationPluginVersion string
	SkipReadin               bool
	Files                    FileNames
}

// Seed returns the metadata every parsed record starts from
func (c Config) Seed() *Record {
	rec := NewRecord()
	rec.Set("parser_version", c.ParserVersion)
	rec.Set("calculation_plugin_version", c.CalculationPluginVersion)
	return rec
}

func defaultRawConf() RawConf {
	rc := RawConf{
		ParserVersion:            ParserVersion,
		CalculationPluginVersion: CalculationPluginVersion,
	}
	rc.Files.Main = DefaultFileNames[RoleMain]
	rc.Files.Init = DefaultFileNames[RoleInit]
	rc.Files.Iter0 = DefaultFileNames[RoleIter0]
	rc.Files.Aux = DefaultFileNames[RoleAux]
	rc.Files.Potential = DefaultFileNames[RolePotential]
	rc.Files.Timing = DefaultFileNames[RoleTiming]
	rc.Files.Nonco = DefaultFileNames[RoleNonco]
	return rc
}

// DefaultConfig is the configuration used without a config file
func DefaultConfig() Config {
	return defaultRawConf().ToConfig()
}

// ReadConfig decodes a TOML configuration from r on top of the
// defaults
func ReadConfig(r io.Reader) (Config, error) {
	cont, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}
	rc := defaultRawConf()
	if err := toml.Unmarshal(cont, &rc); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return rc.ToConfig(), nil
}

func LoadConfig(filename string) (Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return ReadConfig(f)
}

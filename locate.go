package kkr

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Role is one of the fixed output files of a KKR run
type Role int

const (
	RoleMain Role = iota
	RoleInit
	RoleIter0
	RoleAux
	RolePotential
	RoleTiming
	RoleNonco
	numRoles
)

// Roles lists every role in locator order
var Roles = [numRoles]Role{
	RoleMain, RoleInit, RoleIter0, RoleAux,
	RolePotential, RoleTiming, RoleNonco,
}

// FileNames maps each role to the file name expected in the run
// directory
type FileNames [numRoles]string

var DefaultFileNames = FileNames{
	RoleMain:      "out_kkr",
	RoleInit:      "output.0.txt",
	RoleIter0:     "output.000.txt",
	RoleAux:       "output.2.txt",
	RolePotential: "out_potential",
	RoleTiming:    "out_timing.000.txt",
	RoleNonco:     "nonco_angle_out.dat",
}

type roleInfo struct {
	name     string
	label    string
	severity Severity
	check    *ConsistencyCheck
}

var roleTable = [numRoles]roleInfo{
	RoleMain:      {"main", "OUT_KKR", Critical, nil},
	RoleInit:      {"init", "OUTPUT_0_INIT", Critical, nil},
	RoleIter0:     {"iter0", "OUTPUT_000", Critical, nil},
	RoleAux:       {"aux", "OUTPUT_2", Critical, nil},
	RolePotential: {"potential", "OUT_POTENTIAL", Critical, nil},
	RoleTiming:    {"timing", "OUT_TIMING_000", Critical, nil},
	RoleNonco:     {"nonco", "NONCO_ANGELS_OUT", Reviewable, CheckNewSOSOL},
}

func (r Role) String() string {
	if r < 0 || r >= numRoles {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleTable[r].name
}

// missing builds the issue reported when the file for r is absent
func (r Role) missing(fname string) Issue {
	info := roleTable[r]
	if info.severity == Critical {
		return Issue{
			Severity: Critical,
			Message: fmt.Sprintf("Critical error! %s not found %s",
				info.label, fname),
		}
	}
	return Issue{
		Severity: Reviewable,
		Message:  fmt.Sprintf("Error! %s not found %s", info.label, fname),
		Check:    info.check,
	}
}

// Sources holds the read content of each role. A nil Text means the
// role is absent.
type Sources struct {
	Main      *Text
	Init      *Text
	Iter0     *Text
	Aux       *Text
	Potential *Text
	Timing    *Text
	Nonco     *Text
}

func (s *Sources) slot(r Role) **Text {
	switch r {
	case RoleMain:
		return &s.Main
	case RoleInit:
		return &s.Init
	case RoleIter0:
		return &s.Iter0
	case RoleAux:
		return &s.Aux
	case RolePotential:
		return &s.Potential
	case RoleTiming:
		return &s.Timing
	case RoleNonco:
		return &s.Nonco
	}
	panic(fmt.Sprintf("no source slot for %v", r))
}

// Get returns the text for r
func (s *Sources) Get(r Role) *Text {
	return *s.slot(r)
}

// Set stores t as the text for r
func (s *Sources) Set(r Role, t *Text) {
	*s.slot(r) = t
}

// resolve finds the file for fname in dir, either plain or as one of
// the compressed siblings. The empty string means there is none.
func resolve(dir, fname string) string {
	if fname == "" {
		return ""
	}
	for _, ext := range append([]string{""}, compressedExts...) {
		path := filepath.Join(dir, fname+ext)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

// load reads the file for role r from dir. A read error that leaves
// no lines makes the role absent, one after some lines keeps the
// truncated text.
func (p *Parser) load(dir string, r Role) *Text {
	fname := p.Files[r]
	path := resolve(dir, fname)
	if path == "" {
		p.logger().Info("output file missing",
			zap.Stringer("role", r), zap.String("file", fname))
		return nil
	}
	t, err := loadText(path)
	switch {
	case err == nil:
		return t
	case t != nil && len(t.Lines) > 0:
		p.logger().Info("output file truncated",
			zap.Stringer("role", r), zap.String("file", path),
			zap.Int("lines", len(t.Lines)), zap.Error(err))
		return t
	}
	p.logger().Info("output file unreadable",
		zap.Stringer("role", r), zap.String("file", path), zap.Error(err))
	return nil
}

// Locate reads every role file of the run in dir. The main output is
// read first; if it is absent nothing else is opened and
// ErrOutputNotFound is returned. Every other absent role yields one
// Issue, in role order.
func (p *Parser) Locate(dir string) (Sources, []Issue, error) {
	var src Sources
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return src, nil, fmt.Errorf("%s: %w", dir, ErrOutputNotFound)
		}
		return src, nil, err
	}
	if !info.IsDir() {
		return src, nil, fmt.Errorf("%s is not a directory: %w",
			dir, ErrOutputNotFound)
	}
	if src.Main = p.load(dir, RoleMain); src.Main == nil {
		return src, nil, ErrOutputNotFound
	}
	var issues []Issue
	for _, r := range Roles[1:] {
		t := p.load(dir, r)
		if t == nil {
			issues = append(issues, r.missing(p.Files[r]))
			continue
		}
		src.Set(r, t)
	}
	return src, issues, nil
}

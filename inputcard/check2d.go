package inputcard

import (
	"fmt"
	"strings"
)

// keywords that together describe a semi-infinite surface
var surfaceInfo = []string{
	"INTERFACE", "<NRBASIS>", "<RBLEFT>", "<RBRIGHT>",
	"ZPERIODL", "ZPERIODR", "<NLBASIS>",
}

// Check2D reports whether the periodicity of s agrees with the surface
// keywords in p. A structure is a surface when it is not periodic along
// the third cell vector, and then every surface keyword must be set
// with INTERFACE true. A bulk structure must not carry the full set.
func Check2D(s *Structure, p *Params) (bool, string) {
	is2D := false
	if s.PBC != [3]bool{true, true, true} {
		if s.PBC != [3]bool{true, true, false} {
			return false, "Structure.pbc is neither (True, True, True) for " +
				"bulk nor (True, True, False) for surface calculation!"
		}
		is2D = true
	}
	has2D := true
	for _, name := range surfaceInfo {
		if !p.Has(name) {
			has2D = false
		}
	}
	if iface, _ := p.Bool("INTERFACE"); has2D && !iface && is2D {
		return false, "'INTERFACE' parameter set to False but structure is 2D"
	}
	if has2D != is2D {
		head := "3D info given in parameters but structure is 2D"
		if is2D {
			head = "2D info given in parameters but structure is 3D"
		}
		return false, fmt.Sprintf("%s\nstructure is 2D? %s\ninput has 2D info? %s\nset keys are: %s",
			head, format(is2D), format(has2D), pyList(p.Keys()))
	}
	return true, "2D consistency check complete"
}

// pyList formats strs the way the KKR tooling prints a list of names
func pyList(strs []string) string {
	quoted := make([]string, len(strs))
	for i, s := range strs {
		quoted[i] = "'" + s + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

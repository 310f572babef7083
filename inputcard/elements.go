package inputcard

import (
	"fmt"
	"strings"
)

// elements in order of nuclear charge, starting from hydrogen
var elements = strings.Fields(`
H                                                  He
Li Be                               B  C  N  O  F  Ne
Na Mg                               Al Si P  S  Cl Ar
K  Ca Sc Ti V  Cr Mn Fe Co Ni Cu Zn Ga Ge As Se Br Kr
Rb Sr Y  Zr Nb Mo Tc Ru Rh Pd Ag Cd In Sn Sb Te I  Xe
Cs Ba
      La Ce Pr Nd Pm Sm Eu Gd Tb Dy Ho Er Tm Yb Lu
         Hf Ta W  Re Os Ir Pt Au Hg Tl Pb Bi Po At Rn
Fr Ra
      Ac Th Pa U  Np Pu Am Cm Bk Cf Es Fm Md No Lr
`)

var charges = func() map[string]int {
	ret := make(map[string]int, len(elements)+1)
	for i, sym := range elements {
		ret[sym] = i + 1
	}
	ret[Vacancy] = 0
	return ret
}()

// Charge returns the nuclear charge of the element symbol
func Charge(symbol string) (int, error) {
	z, ok := charges[symbol]
	if !ok {
		return 0, fmt.Errorf("unknown element %q", symbol)
	}
	return z, nil
}

// Package nuclide canonicalizes free-form nuclide names to the Symbol-Mass[m]
// form used as the join key between samples and limits.
package nuclide

import (
	"regexp"
	"strings"
)

// Known element symbols, title-cased. Used to disambiguate an isomer marker
// from the first letter of the symbol in mass-first forms ("99mTc" vs "99Mo").
var elementSymbols = map[string]bool{}

func init() {
	for _, s := range strings.Split(
		"Ac Ag Al Am Ar As At Au B Ba Be Bh Bi Bk Br C Ca Cd Ce Cf Cl Cm Cn Co Cr Cs Cu "+
			"Db Ds Dy Er Es Eu F Fe Fl Fm Fr Ga Gd Ge H He Hf Hg Ho Hs I In Ir K Kr La Li "+
			"Lr Lu Lv Md Mg Mn Mo Mt N Na Nb Nd Ne Ni No Np O Og Os P Pa Pb Pd Pm Po Pr Pt "+
			"Pu Ra Rb Re Rf Rg Rh Rn Ru S Sb Sc Se Sg Si Sm Sn Sr Ta Tb Tc Te Th Ti Tl Tm "+
			"Ts U V W Xe Y Yb Zn Zr", " ") {
		elementSymbols[s] = true
	}
}

// A matcher recognizes one surface form and returns the canonical string.
type matcher func(s string) (string, bool)

// Matchers are tried in order; the first success wins.
var matchers = []matcher{
	matchMassFirst,
	matchSymbolFirst,
	matchCanonical,
}

var (
	// mass + isomer + symbol, e.g. "99mTc", "110m2Ag"
	massIsomerSymbolRe = regexp.MustCompile(`^(\d{1,3})(m\d?)([A-Za-z]{1,3})$`)
	// mass + symbol, e.g. "137Cs", "241Am"
	massSymbolRe = regexp.MustCompile(`^(\d{1,3})([A-Za-z]{1,3})$`)
	// symbol + optional hyphen + mass + optional isomer, e.g. "Tc-99m", "cs137", "TC99M"
	symbolFirstRe = regexp.MustCompile(`^([A-Za-z]{1,3})-?(\d{1,3})([mM]\d?)?$`)
	// already-canonical form, re-cased to standard casing
	canonicalRe = regexp.MustCompile(`^([A-Za-z]{1,3})-(\d{1,3})([mM]\d?)?$`)
)

// matchMassFirst handles leading-mass forms. The with-isomer reading is only
// taken when it yields a known element symbol, so "99Mo" is Mo-99, not O-99m.
// When both readings yield known elements ("99mo": O-99m or Mo-99) the longer,
// non-isomer symbol wins.
func matchMassFirst(s string) (string, bool) {
	if m := massIsomerSymbolRe.FindStringSubmatch(s); m != nil {
		sym := titleSymbol(m[3])
		if elementSymbols[sym] {
			if p := massSymbolRe.FindStringSubmatch(s); p != nil && elementSymbols[titleSymbol(p[2])] {
				return titleSymbol(p[2]) + "-" + p[1], true
			}
			return sym + "-" + m[1] + strings.ToLower(m[2]), true
		}
	}
	if m := massSymbolRe.FindStringSubmatch(s); m != nil {
		return titleSymbol(m[2]) + "-" + m[1], true
	}
	return "", false
}

func matchSymbolFirst(s string) (string, bool) {
	m := symbolFirstRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return titleSymbol(m[1]) + "-" + m[2] + strings.ToLower(m[3]), true
}

func matchCanonical(s string) (string, bool) {
	m := canonicalRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return titleSymbol(m[1]) + "-" + m[2] + strings.ToLower(m[3]), true
}

// ToCanonical normalizes a nuclide name to Symbol-Mass[m] form. Unmatched
// input is returned normalized but otherwise unchanged: a lenient fallback
// the caller must treat as a potential non-match downstream.
func ToCanonical(nuclide string) string {
	s := strings.TrimSpace(nuclide)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, "--", "-")
	s = strings.ReplaceAll(s, "(m)", "m")
	s = strings.ReplaceAll(s, "(M)", "m")
	for _, match := range matchers {
		if canon, ok := match(s); ok {
			return canon
		}
	}
	return s
}

// titleSymbol forces element-symbol casing: first letter upper, rest lower.
func titleSymbol(sym string) string {
	if sym == "" {
		return sym
	}
	return strings.ToUpper(sym[:1]) + strings.ToLower(sym[1:])
}

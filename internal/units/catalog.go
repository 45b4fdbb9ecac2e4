package units

import "strings"

// unitDef maps a unit token to its coherent-base factor and dimension. Base
// units are Bq (activity), Sv (dose), kg (mass), m (length), s (time).
type unitDef struct {
	factor float64
	dim    Dimension
}

var (
	dimActivity = Dimension{Activity: 1}
	dimDose     = Dimension{Dose: 1}
	dimMass     = Dimension{Mass: 1}
	dimLength   = Dimension{Length: 1}
	dimArea     = Dimension{Length: 2}
	dimVolume   = Dimension{Length: 3}
	dimTime     = Dimension{Time: 1}
)

// Exact physical conversion factors: 1 Ci = 3.7e10 Bq, 1 rem = 0.01 Sv,
// 1 yr = 365.25 d.
const (
	bqPerCurie   = 3.7e10
	svPerRem     = 0.01
	secondsPerYr = 365.25 * 86400
)

// symbols is the case-sensitive short-form table.
var symbols = map[string]unitDef{
	"Bq":  {1, dimActivity},
	"Ci":  {bqPerCurie, dimActivity},
	"dpm": {1.0 / 60.0, dimActivity},
	"dps": {1, dimActivity},

	"Sv":  {1, dimDose},
	"rem": {svPerRem, dimDose},

	"g": {1e-3, dimMass},

	"m": {1, dimLength},
	"L": {1e-3, dimVolume},
	"l": {1e-3, dimVolume},

	"s":   {1, dimTime},
	"min": {60, dimTime},
	"h":   {3600, dimTime},
	"hr":  {3600, dimTime},
	"d":   {86400, dimTime},
	"yr":  {secondsPerYr, dimTime},
	"y":   {secondsPerYr, dimTime},
	"a":   {secondsPerYr, dimTime},
}

// longNames is the spelled-out table, matched case-insensitively with a
// trailing-s plural allowance. Keys are stored space- and underscore-free
// because normalization strips whitespace before lookup.
var longNames = map[string]unitDef{
	"becquerel":                {1, dimActivity},
	"curie":                    {bqPerCurie, dimActivity},
	"disintegrationsperminute": {1.0 / 60.0, dimActivity},
	"disintegrationspersecond": {1, dimActivity},
	"sievert":                  {1, dimDose},
	"gram":                     {1e-3, dimMass},
	"meter":                    {1, dimLength},
	"metre":                    {1, dimLength},
	"liter":                    {1e-3, dimVolume},
	"litre":                    {1e-3, dimVolume},
	"second":                   {1, dimTime},
	"minute":                   {60, dimTime},
	"hour":                     {3600, dimTime},
	"day":                      {86400, dimTime},
	"year":                     {secondsPerYr, dimTime},
}

// prefixable lists the symbols a decimal prefix may attach to. Time units
// beyond the second and the dpm/dps shorthands do not take prefixes.
var prefixable = map[string]bool{
	"Bq": true, "Ci": true, "Sv": true, "rem": true,
	"g": true, "m": true, "L": true, "l": true, "s": true,
}

var prefixableLong = map[string]bool{
	"becquerel": true, "curie": true, "sievert": true,
	"gram": true, "meter": true, "metre": true,
	"liter": true, "litre": true, "second": true,
}

type prefixDef struct {
	text   string
	factor float64
}

// Multi-character prefixes listed first so "da" wins over "d".
var symbolPrefixes = []prefixDef{
	{"da", 1e1},
	{"y", 1e-24}, {"z", 1e-21}, {"a", 1e-18}, {"f", 1e-15},
	{"p", 1e-12}, {"n", 1e-9}, {"u", 1e-6}, {"m", 1e-3},
	{"c", 1e-2}, {"d", 1e-1}, {"h", 1e2}, {"k", 1e3},
	{"M", 1e6}, {"G", 1e9}, {"T", 1e12}, {"P", 1e15}, {"E", 1e18},
}

var longPrefixes = []prefixDef{
	{"yocto", 1e-24}, {"zepto", 1e-21}, {"atto", 1e-18}, {"femto", 1e-15},
	{"pico", 1e-12}, {"nano", 1e-9}, {"micro", 1e-6}, {"milli", 1e-3},
	{"centi", 1e-2}, {"deci", 1e-1}, {"deca", 1e1}, {"deka", 1e1},
	{"hecto", 1e2}, {"kilo", 1e3}, {"mega", 1e6}, {"giga", 1e9},
	{"tera", 1e12}, {"peta", 1e15}, {"exa", 1e18},
}

// resolveToken finds a single unit token: exact symbol, spelled-out name,
// prefixed symbol, or prefixed spelled-out name, in that order.
func resolveToken(tok string) (unitDef, bool) {
	if def, ok := symbols[tok]; ok {
		return def, true
	}
	if def, ok := lookupLongName(tok); ok {
		return def, true
	}
	for _, p := range symbolPrefixes {
		rest, ok := strings.CutPrefix(tok, p.text)
		if !ok || rest == "" {
			continue
		}
		if def, ok := symbols[rest]; ok && prefixable[rest] {
			return unitDef{def.factor * p.factor, def.dim}, true
		}
	}
	lower := strings.ToLower(tok)
	for _, p := range longPrefixes {
		rest, ok := strings.CutPrefix(lower, p.text)
		if !ok || rest == "" {
			continue
		}
		if def, ok := lookupLongName(rest); ok && prefixableLong[singular(rest)] {
			return unitDef{def.factor * p.factor, def.dim}, true
		}
	}
	return unitDef{}, false
}

func lookupLongName(tok string) (unitDef, bool) {
	lower := strings.ReplaceAll(strings.ToLower(tok), "_", "")
	if def, ok := longNames[lower]; ok {
		return def, true
	}
	if def, ok := longNames[singular(lower)]; ok {
		return def, true
	}
	return unitDef{}, false
}

func singular(lower string) string {
	return strings.TrimSuffix(lower, "s")
}

package units

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"gosof/domain/core"
)

// Quantity is a dimensioned value held in coherent base units (Bq, Sv, kg,
// m, s). Constructed per conversion and discarded; never persisted.
type Quantity struct {
	value float64
	dim   Dimension
}

// Dim returns the quantity's dimension.
func (q Quantity) Dim() Dimension { return q.dim }

// BaseValue returns the magnitude in coherent base units.
func (q Quantity) BaseValue() float64 { return q.value }

// countsPattern catches detector-raw units: cpm, cps, count, counts, on word
// boundaries, which also covers compound phrasings such as "counts per
// minute" and "count/s". Checked before whitespace normalization so word
// boundaries survive.
var countsPattern = regexp.MustCompile(`(?i)\b(?:cpm|cps|counts?)\b`)

// CheckCounts rejects counts-family unit text. Counts cannot be dimensionally
// converted to activity without an efficiency calibration this system does
// not model.
func CheckCounts(unitText string) error {
	if countsPattern.MatchString(unitText) {
		return core.NewCountsUnitError([]string{strings.TrimSpace(unitText)})
	}
	return nil
}

// IsCountsUnit reports whether the unit text is counts-like.
func IsCountsUnit(unitText string) bool {
	return countsPattern.MatchString(unitText)
}

// surfaceBundleM2 is the fixed "per 100 cm²" bundle expressed in m².
const surfaceBundleM2 = 100 * 1e-4

var surfaceSuffixes = []string{"/100cm^2", "per100cm^2"}

// surfaceLabel is the display form of the surface convention.
const surfaceLabel = "Bq/m^2"

// resolveExpr normalizes unit text and resolves it to a definition and the
// label it should display as. A trailing per-100cm² token is matched
// case-insensitively and the leading activity re-resolved lowercased when its
// original casing does not parse, so "DPM/100 CM^2" works. Fully
// dimensionless text (bare numbers) is not a unit.
func resolveExpr(unitText string) (unitDef, string, error) {
	norm := normalize(unitText)
	if norm == "" {
		return unitDef{}, "", core.NewInvalidUnitError(unitText)
	}

	lower := strings.ToLower(norm)
	for _, suffix := range surfaceSuffixes {
		if !strings.HasSuffix(lower, suffix) {
			continue
		}
		base := norm[:len(norm)-len(suffix)]
		def, err := parseExpr(base)
		if err != nil {
			def, err = parseExpr(strings.ToLower(base))
		}
		if err != nil {
			return unitDef{}, "", core.NewInvalidUnitError(unitText)
		}
		if def.dim != dimActivity {
			return unitDef{}, "", core.NewIncompatibleUnitError(unitText, surfaceLabel)
		}
		return unitDef{def.factor / surfaceBundleM2, def.dim.div(dimArea)}, surfaceLabel, nil
	}

	def, err := parseExpr(norm)
	if err != nil || def.dim.IsZero() {
		return unitDef{}, "", core.NewInvalidUnitError(unitText)
	}
	return def, norm, nil
}

// Parse builds a dimensioned quantity from a value and free-form unit text.
// Normalization: whitespace stripped, micro sign folded to "u", "**" folded
// to "^". A trailing per-100cm² token is the surface-contamination
// convention: the remainder parses as an activity, is divided by the 100 cm²
// bundle, and the result lives in becquerel-per-square-meter terms.
func Parse(value float64, unitText string) (Quantity, error) {
	if err := CheckCounts(unitText); err != nil {
		return Quantity{}, err
	}
	def, _, err := resolveExpr(unitText)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{value: value * def.factor, dim: def.dim}, nil
}

// Target is a resolved conversion target: a display label plus the size of
// one labeled unit in base units. A per-100cm² target resolves to its
// becquerel-per-square-meter form, so Label can differ from the unit text it
// was built from.
type Target struct {
	Label  string
	factor float64
	dim    Dimension
}

// Dim returns the target's dimension.
func (t Target) Dim() Dimension { return t.dim }

// FromBase re-expresses a base-unit magnitude in the target unit.
func (t Target) FromBase(v float64) float64 { return v / t.factor }

// ResolveTarget parses free-form unit text into a conversion target. The
// counts guard and the surface convention apply symmetrically with Parse.
func ResolveTarget(unitText string) (Target, error) {
	if err := CheckCounts(unitText); err != nil {
		return Target{}, err
	}
	def, label, err := resolveExpr(unitText)
	if err != nil {
		return Target{}, err
	}
	factor := def.factor
	if label == surfaceLabel {
		// Surface magnitudes live in Bq/m², which is the base form.
		factor = 1
	}
	return Target{Label: label, factor: factor, dim: def.dim}, nil
}

// In converts the quantity into the target unit and returns its magnitude
// there. The counts guard applies to the target symmetrically, and a
// per-100cm² target yields the magnitude in becquerel per square meter.
func (q Quantity) In(targetUnit string) (float64, error) {
	t, err := ResolveTarget(targetUnit)
	if err != nil {
		return 0, err
	}
	if t.dim != q.dim {
		return 0, core.NewIncompatibleUnitError(q.dim.String(), targetUnit)
	}
	return t.FromBase(q.value), nil
}

// Convert parses a value in one unit and re-expresses it in another.
func Convert(value float64, fromUnit, toUnit string) (float64, error) {
	q, err := Parse(value, fromUnit)
	if err != nil {
		return 0, err
	}
	return q.In(toUnit)
}

func normalize(unitText string) string {
	s := strings.TrimSpace(unitText)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\t", "")
	s = strings.ReplaceAll(s, "µ", "u")
	s = strings.ReplaceAll(s, "μ", "u")
	s = strings.ReplaceAll(s, "²", "^2")
	s = strings.ReplaceAll(s, "³", "^3")
	s = strings.ReplaceAll(s, "**", "^")
	s = strings.ReplaceAll(s, "·", "*")
	s = strings.ReplaceAll(s, "⋅", "*")
	return s
}

// parseExpr handles quotient expressions: numerator, then zero or more
// "/denominator" segments, each segment a "*"-separated product of tokens
// with optional "^int" exponents. Bare numbers are scalar factors ("1/s").
func parseExpr(text string) (unitDef, error) {
	segments := strings.Split(text, "/")
	result := unitDef{factor: 1}
	for i, seg := range segments {
		def, err := parseProduct(seg)
		if err != nil {
			return unitDef{}, err
		}
		if i == 0 {
			result = def
		} else {
			result = unitDef{result.factor / def.factor, result.dim.div(def.dim)}
		}
	}
	return result, nil
}

func parseProduct(seg string) (unitDef, error) {
	if seg == "" {
		return unitDef{}, core.ErrInvalidUnit
	}
	result := unitDef{factor: 1}
	for _, factor := range strings.Split(seg, "*") {
		def, err := parseFactor(factor)
		if err != nil {
			return unitDef{}, err
		}
		result = unitDef{result.factor * def.factor, result.dim.mul(def.dim)}
	}
	return result, nil
}

func parseFactor(factor string) (unitDef, error) {
	if factor == "" {
		return unitDef{}, core.ErrInvalidUnit
	}
	tok := factor
	exp := 1
	if base, expText, found := strings.Cut(factor, "^"); found {
		n, err := strconv.Atoi(expText)
		if err != nil {
			return unitDef{}, core.ErrInvalidUnit
		}
		tok, exp = base, n
	}
	if num, err := strconv.ParseFloat(tok, 64); err == nil {
		return unitDef{factor: math.Pow(num, float64(exp))}, nil
	}
	def, ok := resolveToken(tok)
	if !ok {
		return unitDef{}, core.ErrInvalidUnit
	}
	return unitDef{math.Pow(def.factor, float64(exp)), def.dim.pow(exp)}, nil
}

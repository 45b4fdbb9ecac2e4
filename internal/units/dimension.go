package units

import (
	"fmt"
	"strings"
)

// Dimension holds the exponents of a quantity over the base dimensions this
// engine models. Activity and dose are independent axes on purpose: treating
// Bq as 1/s would let activity convert into frequency, which is never what
// radiological sample data means.
type Dimension struct {
	Activity int
	Dose     int
	Mass     int
	Length   int
	Time     int
}

func (d Dimension) mul(o Dimension) Dimension {
	return Dimension{
		Activity: d.Activity + o.Activity,
		Dose:     d.Dose + o.Dose,
		Mass:     d.Mass + o.Mass,
		Length:   d.Length + o.Length,
		Time:     d.Time + o.Time,
	}
}

func (d Dimension) div(o Dimension) Dimension {
	return Dimension{
		Activity: d.Activity - o.Activity,
		Dose:     d.Dose - o.Dose,
		Mass:     d.Mass - o.Mass,
		Length:   d.Length - o.Length,
		Time:     d.Time - o.Time,
	}
}

func (d Dimension) pow(n int) Dimension {
	return Dimension{
		Activity: d.Activity * n,
		Dose:     d.Dose * n,
		Mass:     d.Mass * n,
		Length:   d.Length * n,
		Time:     d.Time * n,
	}
}

// IsZero reports a dimensionless quantity.
func (d Dimension) IsZero() bool {
	return d == Dimension{}
}

// String renders the dimension for error messages, e.g. "activity·length^-2".
func (d Dimension) String() string {
	parts := []struct {
		name string
		exp  int
	}{
		{"activity", d.Activity},
		{"dose", d.Dose},
		{"mass", d.Mass},
		{"length", d.Length},
		{"time", d.Time},
	}
	var out []string
	for _, p := range parts {
		switch {
		case p.exp == 0:
		case p.exp == 1:
			out = append(out, p.name)
		default:
			out = append(out, fmt.Sprintf("%s^%d", p.name, p.exp))
		}
	}
	if len(out) == 0 {
		return "dimensionless"
	}
	return strings.Join(out, "·")
}

package sof

import (
	"encoding/json"
	"math"
)

// Sigma is an optional 1-sigma measurement uncertainty. A row without a
// reported uncertainty carries an invalid Sigma, which is distinct from a
// zero uncertainty: zero means "exactly known", invalid means "not stated".
type Sigma struct {
	Value float64
	Valid bool
}

// SigmaOf wraps a stated uncertainty value.
func SigmaOf(v float64) Sigma {
	return Sigma{Value: v, Valid: true}
}

// NoSigma is the absent-uncertainty value.
var NoSigma = Sigma{}

// Scale multiplies a valid sigma by k. Unit conversion of a measurement is
// linear, so its uncertainty scales by the same factor.
func (s Sigma) Scale(k float64) Sigma {
	if !s.Valid {
		return NoSigma
	}
	return SigmaOf(s.Value * k)
}

// Div propagates division by an exact denominator.
func (s Sigma) Div(d float64) Sigma {
	if !s.Valid {
		return NoSigma
	}
	return SigmaOf(math.Abs(s.Value / d))
}

// Quadrature combines independent uncertainties as sqrt of the sum of
// squares. Absent sigmas contribute zero variance, but only when at least
// one input is valid; if none are, the result is absent rather than zero.
func Quadrature(sigmas ...Sigma) Sigma {
	var sumSq float64
	any := false
	for _, s := range sigmas {
		if !s.Valid {
			continue
		}
		any = true
		sumSq += s.Value * s.Value
	}
	if !any {
		return NoSigma
	}
	return SigmaOf(math.Sqrt(sumSq))
}

// MarshalJSON encodes an absent sigma as null.
func (s Sigma) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

func (s *Sigma) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = NoSigma
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = SigmaOf(v)
	return nil
}

package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - centralized error definitions
var (
	// Input-table errors
	ErrSchema        = errors.New("missing required column")
	ErrEmptyCategory = errors.New("no limits match category")

	// Unit errors
	ErrCountsUnit       = errors.New("counts units detected")
	ErrInvalidUnit      = errors.New("unparseable unit")
	ErrIncompatibleUnit = errors.New("incompatible unit dimensions")
	ErrUnitMismatch     = errors.New("sample and limit units are not convertible")

	// Limit-matching errors
	ErrNuclideNotFound  = errors.New("no limit found for nuclide")
	ErrAmbiguousLimit   = errors.New("multiple limit rows for canonical nuclide")
	ErrNonPositiveLimit = errors.New("limit must be positive")
)

// Error constructors with context
func NewSchemaError(table string, missing []string) error {
	return fmt.Errorf("%w: %s table is missing %s", ErrSchema, table, strings.Join(missing, ", "))
}

func NewEmptyCategoryError(category string) error {
	return fmt.Errorf("%w: %q", ErrEmptyCategory, category)
}

// NewCountsUnitError lists every offending unit string so the caller can fix
// the input in one pass. Counts (cpm/cps) need a detector efficiency to become
// activity, which this system does not model.
func NewCountsUnitError(units []string) error {
	return fmt.Errorf("%w in sample units: %s. Counts (cpm/cps) require detector efficiency "+
		"to convert to activity (dpm or Bq); pre-convert and re-run", ErrCountsUnit, strings.Join(units, ", "))
}

func NewInvalidUnitError(unit string) error {
	return fmt.Errorf("%w: %q", ErrInvalidUnit, unit)
}

func NewIncompatibleUnitError(from, to string) error {
	return fmt.Errorf("%w: cannot convert %q to %q", ErrIncompatibleUnit, from, to)
}

func NewUnitMismatchError(sampleUnit, limitUnit, nuclide string) error {
	return fmt.Errorf("%w: cannot convert sample unit %q to limit unit %q for %s",
		ErrUnitMismatch, sampleUnit, limitUnit, nuclide)
}

func NewNuclideNotFoundError(nuclides []string) error {
	return fmt.Errorf("%w: %s", ErrNuclideNotFound, strings.Join(nuclides, ", "))
}

func NewAmbiguousLimitError(nuclides []string) error {
	return fmt.Errorf("%w: %s", ErrAmbiguousLimit, strings.Join(nuclides, ", "))
}

func NewNonPositiveLimitError(nuclide string, value float64, unit string) error {
	return fmt.Errorf("%w: %s has limit %v %s", ErrNonPositiveLimit, nuclide, value, unit)
}

// Error checking helpers
func IsUnitError(err error) bool {
	return errors.Is(err, ErrCountsUnit) ||
		errors.Is(err, ErrInvalidUnit) ||
		errors.Is(err, ErrIncompatibleUnit) ||
		errors.Is(err, ErrUnitMismatch)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrSchema) ||
		errors.Is(err, ErrEmptyCategory) ||
		errors.Is(err, ErrNuclideNotFound) ||
		errors.Is(err, ErrAmbiguousLimit) ||
		errors.Is(err, ErrNonPositiveLimit)
}

// IsComputeError reports whether err is any typed failure a compute run can
// surface, as opposed to an infrastructure error (I/O, database).
func IsComputeError(err error) bool {
	return IsUnitError(err) || IsInputError(err)
}

package sof

import (
	"fmt"
	"strconv"
	"strings"

	"gosof/domain/core"
)

// Row is one raw table row keyed by normalized column name.
type Row map[string]string

// Table is a loaded tabular dataset. Loaders normalize column headers to the
// standard names before the core ever sees the table; the core still verifies
// the required columns are present.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Required columns per table kind.
var (
	RequiredSampleColumns = []string{"nuclide", "value", "unit"}
	RequiredLimitColumns  = []string{"nuclide", "limit_value", "limit_unit"}
)

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

func (t *Table) requireColumns(name string, required []string) error {
	var missing []string
	for _, c := range required {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return core.NewSchemaError(name, missing)
	}
	return nil
}

// DecodeSamples validates the sample table schema and parses typed rows.
func DecodeSamples(t *Table) ([]SampleRow, error) {
	if err := t.requireColumns("samples", RequiredSampleColumns); err != nil {
		return nil, err
	}
	rows := make([]SampleRow, 0, len(t.Rows))
	for i, r := range t.Rows {
		value, err := parseCellFloat(r["value"])
		if err != nil {
			return nil, fmt.Errorf("samples row %d: invalid value %q", i+1, r["value"])
		}
		row := SampleRow{
			Nuclide: strings.TrimSpace(r["nuclide"]),
			Value:   value,
			Unit:    strings.TrimSpace(r["unit"]),
			Note:    strings.TrimSpace(r["note"]),
			BatchID: strings.TrimSpace(r["batch_id"]),
		}
		if cell := strings.TrimSpace(r["sigma"]); cell != "" {
			s, err := parseCellFloat(cell)
			if err != nil {
				return nil, fmt.Errorf("samples row %d: invalid sigma %q", i+1, cell)
			}
			row.Sigma = SigmaOf(s)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DecodeLimits validates the limit table schema and parses typed rows.
func DecodeLimits(t *Table) ([]LimitEntry, error) {
	if err := t.requireColumns("limits", RequiredLimitColumns); err != nil {
		return nil, err
	}
	rows := make([]LimitEntry, 0, len(t.Rows))
	for i, r := range t.Rows {
		value, err := parseCellFloat(r["limit_value"])
		if err != nil {
			return nil, fmt.Errorf("limits row %d: invalid limit_value %q", i+1, r["limit_value"])
		}
		rows = append(rows, LimitEntry{
			Nuclide:    strings.TrimSpace(r["nuclide"]),
			LimitValue: value,
			LimitUnit:  strings.TrimSpace(r["limit_unit"]),
			Category:   strings.TrimSpace(r["category"]),
			RuleName:   strings.TrimSpace(r["rule_name"]),
			RuleRev:    strings.TrimSpace(r["rule_rev"]),
			Provenance: strings.TrimSpace(r["provenance"]),
		})
	}
	return rows, nil
}

func parseCellFloat(cell string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(cell), 64)
}

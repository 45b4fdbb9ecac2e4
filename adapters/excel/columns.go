package excel

import "strings"

// Column-header aliases accepted in input files. Headers are matched
// case-insensitively after trimming; the first alias hit wins, and later
// aliases never remap a column that already claimed a standard name.
var sampleColumnAliases = map[string][]string{
	"nuclide":  {"nuclide", "isotope", "radionuclide", "id"},
	"value":    {"value", "concentration", "activity_conc", "result"},
	"unit":     {"unit", "units"},
	"sigma":    {"sigma", "std", "u", "uncertainty"},
	"note":     {"note", "comments"},
	"batch_id": {"batch_id", "sample", "sample_id"},
}

var limitColumnAliases = map[string][]string{
	"nuclide":     {"nuclide", "isotope", "radionuclide", "id"},
	"limit_value": {"limit_value", "limit", "value"},
	"limit_unit":  {"limit_unit", "unit", "units"},
	"category":    {"category", "class"},
	"rule_name":   {"rule_name", "rule", "regulation"},
	"rule_rev":    {"rule_rev", "rev", "revision", "date"},
	"provenance":  {"provenance", "source"},
}

// Output column order is fixed so tables built from the same file are stable
// regardless of map iteration.
var (
	sampleColumnOrder = []string{"nuclide", "value", "unit", "sigma", "note", "batch_id"}
	limitColumnOrder  = []string{"nuclide", "limit_value", "limit_unit", "category", "rule_name", "rule_rev", "provenance"}
)

// mapHeaders resolves raw file headers to standard column names. The returned
// map is raw header -> standard name; headers that match no alias are dropped.
func mapHeaders(headers []string, aliases map[string][]string, order []string) map[string]string {
	lower := make(map[string]string, len(headers))
	for _, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, seen := lower[key]; !seen {
			lower[key] = h
		}
	}

	mapped := make(map[string]string)
	for _, std := range order {
		for _, alias := range aliases[std] {
			if raw, ok := lower[alias]; ok {
				mapped[raw] = std
				break
			}
		}
	}
	return mapped
}

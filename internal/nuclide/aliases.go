package nuclide

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// AliasMap is an immutable lookup from normalized alias text to canonical
// nuclide string. Built once by BuildAliasMap and handed to the
// Canonicalizer; there is no cache lifecycle to manage.
type AliasMap struct {
	entries map[string]string
}

// Len returns the number of alias entries.
func (a *AliasMap) Len() int {
	if a == nil {
		return 0
	}
	return len(a.entries)
}

// Lookup resolves a raw nuclide name through the alias table. The key is
// case-insensitive with spaces and underscores stripped; a hyphen-stripped
// variant is tried second.
func (a *AliasMap) Lookup(name string) (string, bool) {
	if a == nil || len(a.entries) == 0 {
		return "", false
	}
	key := normalizeAliasKey(name)
	if canon, ok := a.entries[key]; ok {
		return canon, true
	}
	if canon, ok := a.entries[strings.ReplaceAll(key, "-", "")]; ok {
		return canon, true
	}
	return "", false
}

// Entries returns a copy of the alias table for display purposes.
func (a *AliasMap) Entries() map[string]string {
	out := make(map[string]string, a.Len())
	if a != nil {
		for k, v := range a.entries {
			out[k] = v
		}
	}
	return out
}

// CandidatePaths lists alias sources in priority order: the explicit
// override first, then working-directory data files, then the configured
// data directory. Duplicates are dropped, order preserved.
func CandidatePaths(overridePath, dataDir string) []string {
	var paths []string
	if overridePath != "" {
		paths = append(paths, overridePath)
	}
	paths = append(paths,
		filepath.Join("data", "nuclide_aliases.csv"),
		filepath.Join("data", "nuclide_aliases.json"),
	)
	if dataDir != "" {
		paths = append(paths,
			filepath.Join(dataDir, "nuclide_aliases.csv"),
			filepath.Join(dataDir, "nuclide_aliases.json"),
		)
	}
	seen := make(map[string]bool, len(paths))
	ordered := paths[:0]
	for _, p := range paths {
		if !seen[p] {
			ordered = append(ordered, p)
			seen[p] = true
		}
	}
	return ordered
}

// BuildAliasMap merges alias sources with first-writer-wins precedence:
// sources are read in the given priority order and a later source never
// replaces a key an earlier one already set. Unreadable or malformed sources
// are skipped, not fatal - alias enrichment is advisory, and canonicalization
// still proceeds via the regex fallback.
func BuildAliasMap(paths []string) *AliasMap {
	merged := make(map[string]string)
	for _, path := range paths {
		for key, canon := range loadAliasSource(path) {
			if _, exists := merged[key]; !exists {
				merged[key] = canon
			}
		}
	}
	return &AliasMap{entries: merged}
}

func loadAliasSource(path string) map[string]string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadAliasCSV(path)
	case ".json":
		return loadAliasJSON(path)
	default:
		return nil
	}
}

func loadAliasCSV(path string) map[string]string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil || len(records) < 2 {
		return nil
	}

	aliasCol, canonCol := -1, -1
	for i, h := range records[0] {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))) {
		case "alias":
			aliasCol = i
		case "canonical":
			canonCol = i
		}
	}
	if aliasCol < 0 || canonCol < 0 {
		return nil
	}

	out := make(map[string]string)
	for _, rec := range records[1:] {
		if len(rec) <= aliasCol || len(rec) <= canonCol {
			continue
		}
		alias := strings.TrimSpace(rec[aliasCol])
		canon := strings.TrimSpace(rec[canonCol])
		if alias != "" && canon != "" {
			out[normalizeAliasKey(alias)] = canon
		}
	}
	return out
}

func loadAliasJSON(path string) map[string]string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	out := make(map[string]string)

	// Either an object mapping alias to canonical...
	var obj map[string]string
	if err := json.Unmarshal(data, &obj); err == nil {
		for alias, canon := range obj {
			alias, canon = strings.TrimSpace(alias), strings.TrimSpace(canon)
			if alias != "" && canon != "" {
				out[normalizeAliasKey(alias)] = canon
			}
		}
		return out
	}

	// ...or an array of {alias, canonical} objects.
	var arr []struct {
		Alias     string `json:"alias"`
		Canonical string `json:"canonical"`
	}
	if err := json.Unmarshal(data, &arr); err != nil {
		return nil
	}
	for _, item := range arr {
		alias, canon := strings.TrimSpace(item.Alias), strings.TrimSpace(item.Canonical)
		if alias != "" && canon != "" {
			out[normalizeAliasKey(alias)] = canon
		}
	}
	return out
}

func normalizeAliasKey(name string) string {
	key := strings.ReplaceAll(name, " ", "")
	key = strings.ReplaceAll(key, "_", "")
	return strings.ToLower(strings.TrimSpace(key))
}

// Canonicalizer resolves nuclide names: samples go through the alias table
// first with regex fallback, limits use the regex canonicalizer only.
type Canonicalizer struct {
	aliases *AliasMap
}

// NewCanonicalizer wires an alias map (nil means regex-only).
func NewCanonicalizer(aliases *AliasMap) *Canonicalizer {
	return &Canonicalizer{aliases: aliases}
}

// CanonicalizeSample maps a sample-side nuclide name. The second result is
// true when the alias table supplied the mapping; false means the regex
// fallback (or no change) produced it, which downstream reports for audit.
func (c *Canonicalizer) CanonicalizeSample(name string) (string, bool) {
	raw := strings.TrimSpace(name)
	if raw == "" {
		return "", false
	}
	if canon, ok := c.aliases.Lookup(raw); ok {
		return canon, true
	}
	return ToCanonical(raw), false
}

// CanonicalizeLimit maps a limit-side nuclide name. Limits never consult the
// alias table: regulatory tables are expected to use near-canonical names.
func (c *Canonicalizer) CanonicalizeLimit(name string) string {
	return ToCanonical(name)
}

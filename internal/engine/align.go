package engine

import (
	"sort"
	"strings"

	"gosof/domain/core"
	"gosof/domain/sof"
	"gosof/internal/units"
)

// align joins samples to limits on canonical nuclide identity and converts
// each sample's measurement into its matched limit's units.
func (e *Engine) align(
	samples []sof.SampleRow,
	limits []sof.LimitEntry,
	limitsHaveCategory bool,
	opts sof.Options,
) (matched []sof.MatchedRow, unmappedAliases, missingLimits []string, err error) {
	// Safety first: block counts-like units with one message naming every
	// offending unit, before any canonicalization or conversion.
	if found := detectCountsUnits(samples); len(found) > 0 {
		return nil, nil, nil, core.NewCountsUnitError(found)
	}

	// Canonicalize both sides. Sample names that changed by regex fallback
	// without alias-table confirmation go into the audit list: a human
	// should confirm those mappings.
	sampleCanon := make([]string, len(samples))
	unmappedSet := map[string]bool{}
	for i, s := range samples {
		canon, usedAlias := e.canon.CanonicalizeSample(s.Nuclide)
		sampleCanon[i] = canon
		if raw := strings.TrimSpace(s.Nuclide); !usedAlias && raw != canon {
			unmappedSet[raw] = true
		}
	}

	// Optional category filter, only meaningful when the limit table
	// carries a category column at all.
	if opts.Category != "" && limitsHaveCategory {
		key := strings.TrimSpace(opts.Category)
		filtered := limits[:0:0]
		for _, l := range limits {
			if strings.EqualFold(strings.TrimSpace(l.Category), key) {
				filtered = append(filtered, l)
			}
		}
		if len(filtered) == 0 {
			return nil, nil, nil, core.NewEmptyCategoryError(opts.Category)
		}
		limits = filtered
	}

	// One limit per canonical nuclide or the run is ambiguous.
	limitByCanon := make(map[string]sof.LimitEntry, len(limits))
	dupSet := map[string]bool{}
	for _, l := range limits {
		canon := e.canon.CanonicalizeLimit(l.Nuclide)
		if _, exists := limitByCanon[canon]; exists {
			dupSet[canon] = true
			continue
		}
		limitByCanon[canon] = l
	}
	if len(dupSet) > 0 {
		return nil, nil, nil, core.NewAmbiguousLimitError(sortedKeys(dupSet))
	}

	// Left-join samples to limits; collect unmatched nuclides in order of
	// first appearance.
	missingSet := map[string]bool{}
	for i, s := range samples {
		limit, ok := limitByCanon[sampleCanon[i]]
		if !ok {
			raw := strings.TrimSpace(s.Nuclide)
			if !missingSet[raw] {
				missingSet[raw] = true
				missingLimits = append(missingLimits, raw)
			}
			continue
		}

		row, err := convertRow(s, sampleCanon[i], limit)
		if err != nil {
			return nil, nil, nil, err
		}
		matched = append(matched, row)
	}

	if len(missingLimits) > 0 && !opts.TreatMissingAsZero {
		return nil, nil, nil, core.NewNuclideNotFoundError(missingLimits)
	}

	return matched, sortedKeys(unmappedSet), missingLimits, nil
}

// convertRow validates the limit magnitude and re-expresses the sample (and
// its sigma) in the limit's display unit. A per-100cm² limit re-expresses as
// Bq/m², so the limit magnitude converts along with the sample.
func convertRow(s sof.SampleRow, canon string, limit sof.LimitEntry) (sof.MatchedRow, error) {
	target, err := units.ResolveTarget(limit.LimitUnit)
	if err != nil {
		return sof.MatchedRow{}, err
	}
	if limit.LimitValue <= 0 {
		return sof.MatchedRow{}, core.NewNonPositiveLimitError(canon, limit.LimitValue, limit.LimitUnit)
	}
	ql, err := units.Parse(limit.LimitValue, limit.LimitUnit)
	if err != nil {
		return sof.MatchedRow{}, err
	}

	// One sample unit in target units. Conversion is linear, so the same
	// scale carries the value and its sigma.
	unitQ, err := units.Parse(1, s.Unit)
	if err != nil {
		return sof.MatchedRow{}, err
	}
	if unitQ.Dim() != target.Dim() {
		return sof.MatchedRow{}, core.NewUnitMismatchError(s.Unit, limit.LimitUnit, canon)
	}
	scale := target.FromBase(unitQ.BaseValue())

	return sof.MatchedRow{
		Canonical:  canon,
		ValueConv:  s.Value * scale,
		LimitValue: target.FromBase(ql.BaseValue()),
		UnitLabel:  target.Label,
		Sigma:      s.Sigma.Scale(scale),
		RuleName:   limit.RuleName,
		Category:   limit.Category,
		Note:       s.Note,
	}, nil
}

// detectCountsUnits returns the sorted distinct sample unit strings that are
// counts-like.
func detectCountsUnits(samples []sof.SampleRow) []string {
	found := map[string]bool{}
	for _, s := range samples {
		if units.IsCountsUnit(s.Unit) {
			found[strings.TrimSpace(s.Unit)] = true
		}
	}
	if len(found) == 0 {
		return nil
	}
	return sortedKeys(found)
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

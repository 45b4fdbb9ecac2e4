package engine

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"gosof/domain/core"
	"gosof/domain/sof"
)

// aggregate merges duplicate nuclides if requested, computes per-row
// fractions with uncertainty propagation, and assembles the run summary.
func (e *Engine) aggregate(rows []sof.MatchedRow, opts sof.Options, unmapped, missing []string) *sof.Result {
	if opts.CombineDuplicates {
		rows = combineDuplicates(rows)
	}

	sigFigs := opts.DisplaySigFigs
	if sigFigs == 0 {
		sigFigs = 4
	}
	if sigFigs < 1 {
		sigFigs = 1
	}

	fractions := make([]float64, len(rows))
	sigmas := make([]sof.Sigma, len(rows))
	for i, r := range rows {
		fractions[i] = r.ValueConv / r.LimitValue
		sigmas[i] = r.Sigma.Div(r.LimitValue)
	}

	total := 0.0
	if len(fractions) > 0 {
		total = floats.Sum(fractions)
	}

	// Rows without sigma contribute zero variance to the total. That is a
	// deliberate approximation at the aggregate level; SigmaComplete tells
	// consumers whether the total sigma covers every row.
	totalSigma := sof.Quadrature(sigmas...)
	sigmaComplete := len(rows) > 0
	for _, s := range sigmas {
		if !s.Valid {
			sigmaComplete = false
			break
		}
	}

	out := make([]sof.ResultRow, len(rows))
	for i, r := range rows {
		allowed := (1.0 - total) * r.LimitValue
		if allowed < 0 {
			allowed = 0
		}
		out[i] = sof.ResultRow{
			Nuclide:           r.Canonical,
			ConcDisplay:       fmt.Sprintf("%.*g %s", sigFigs, r.ValueConv, r.UnitLabel),
			LimitDisplay:      fmt.Sprintf("%.*g %s", sigFigs, r.LimitValue, r.UnitLabel),
			Fraction:          fractions[i],
			FractionDisplay:   fmt.Sprintf("%.*g", sigFigs, fractions[i]),
			FractionSigma:     sigmas[i],
			AllowedAdditional: allowed,
			Note:              r.Note,
		}
	}

	summary := sof.Summary{
		RuleName:               firstNonEmptyRule(rows),
		Category:               resolveCategory(opts.Category, rows),
		SofTotal:               total,
		SofSigma:               totalSigma,
		SigmaComplete:          sigmaComplete,
		PassLimit:              total <= 1.0,
		MarginTo1:              1.0 - total,
		UnmappedAliases:        emptyIfNil(unmapped),
		MissingLimitForSamples: emptyIfNil(missing),
		Version:                sof.Version,
		Timestamp:              core.Now(),
		Assumptions:            assumptions(opts),
	}

	return &sof.Result{Rows: out, Summary: summary}
}

// combineDuplicates merges rows sharing a canonical nuclide, preserving
// first-seen order. Converted values sum; the limit comes from the first row
// (all rows for a nuclide share one limit by construction); sigmas combine in
// quadrature; the first non-empty rule/category/note is kept.
func combineDuplicates(rows []sof.MatchedRow) []sof.MatchedRow {
	index := map[string]int{}
	merged := make([]sof.MatchedRow, 0, len(rows))
	groupSigmas := map[string][]sof.Sigma{}

	for _, r := range rows {
		i, seen := index[r.Canonical]
		if !seen {
			index[r.Canonical] = len(merged)
			merged = append(merged, r)
			groupSigmas[r.Canonical] = []sof.Sigma{r.Sigma}
			continue
		}
		merged[i].ValueConv += r.ValueConv
		groupSigmas[r.Canonical] = append(groupSigmas[r.Canonical], r.Sigma)
		if merged[i].RuleName == "" {
			merged[i].RuleName = r.RuleName
		}
		if merged[i].Category == "" {
			merged[i].Category = r.Category
		}
		if merged[i].Note == "" {
			merged[i].Note = r.Note
		}
	}

	for canon, sigmas := range groupSigmas {
		merged[index[canon]].Sigma = sof.Quadrature(sigmas...)
	}
	return merged
}

func firstNonEmptyRule(rows []sof.MatchedRow) string {
	for _, r := range rows {
		if r.RuleName != "" {
			return r.RuleName
		}
	}
	return "(unspecified)"
}

func resolveCategory(filter string, rows []sof.MatchedRow) string {
	if filter != "" {
		return filter
	}
	for _, r := range rows {
		if r.Category != "" {
			return r.Category
		}
	}
	return ""
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func assumptions(opts sof.Options) []string {
	missing := "Missing limits raise an error."
	if opts.TreatMissingAsZero {
		missing = "Missing limits contribute 0 (dropped)."
	}
	duplicates := "Duplicate nuclide rows kept separate."
	if opts.CombineDuplicates {
		duplicates = "Duplicates combined after conversion (values summed; sigma combined in quadrature)."
	}
	return []string{
		"Fractions computed as measurement_in_limit_units / limit_value.",
		"Measurement units converted to limit units per-row.",
		missing,
		duplicates,
		"Limits must be positive; zero/negative limits are rejected.",
	}
}

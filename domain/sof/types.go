package sof

import (
	"gosof/domain/core"
)

// Version is stamped into summaries and audit records.
const Version = "0.1.1"

// SampleRow is one measurement. Immutable once loaded; the pipeline derives
// new fields (canonical nuclide, converted value) without mutating it.
type SampleRow struct {
	Nuclide string  `json:"nuclide"`
	Value   float64 `json:"value"`
	Unit    string  `json:"unit"`
	Sigma   Sigma   `json:"sigma"`
	Note    string  `json:"note,omitempty"`
	BatchID string  `json:"batch_id,omitempty"`
}

// LimitEntry is one regulatory limit.
// INVARIANT: after canonicalization and category filtering there is at most
// one entry per canonical nuclide; a violation is a fatal input error.
type LimitEntry struct {
	Nuclide    string  `json:"nuclide"`
	LimitValue float64 `json:"limit_value"`
	LimitUnit  string  `json:"limit_unit"`
	Category   string  `json:"category,omitempty"`
	RuleName   string  `json:"rule_name,omitempty"`
	RuleRev    string  `json:"rule_rev,omitempty"`
	Provenance string  `json:"provenance,omitempty"`
}

// MatchedRow is a sample joined to its limit, with both magnitudes already
// expressed in the limit's display unit. Created by the alignment stage,
// consumed (and possibly merged) by aggregation; never persisted.
type MatchedRow struct {
	Canonical  string
	ValueConv  float64 // sample value in the display unit
	LimitValue float64 // limit magnitude in the display unit
	UnitLabel  string  // shared display unit; Bq/m^2 for per-100cm² limits
	Sigma      Sigma   // converted into the display unit alongside the value
	RuleName   string
	Category   string
	Note       string
}

// ResultRow is one output row per (possibly aggregated) canonical nuclide.
// Display strings are presentation-only and must not feed further math.
type ResultRow struct {
	Nuclide           string  `json:"nuclide"`
	ConcDisplay       string  `json:"conc_display"`
	LimitDisplay      string  `json:"limit_display"`
	Fraction          float64 `json:"fraction"`
	FractionDisplay   string  `json:"fraction_display"`
	FractionSigma     Sigma   `json:"fraction_sigma"`
	AllowedAdditional float64 `json:"allowed_additional_in_limit_units"`
	Note              string  `json:"note,omitempty"`
}

// Summary is the per-run compliance record.
type Summary struct {
	RuleName string  `json:"rule_name"`
	Category string  `json:"category,omitempty"`
	SofTotal float64 `json:"sof_total"`
	SofSigma Sigma   `json:"sof_sigma"`
	// SigmaComplete is false when the total sigma omits rows that carried no
	// uncertainty, i.e. SofSigma is a lower bound rather than a full estimate.
	SigmaComplete          bool           `json:"sigma_complete"`
	PassLimit              bool           `json:"pass_limit"`
	MarginTo1              float64        `json:"margin_to_1"`
	UnmappedAliases        []string       `json:"unmapped_aliases"`
	MissingLimitForSamples []string       `json:"missing_limit_for_samples"`
	Version                string         `json:"version"`
	Timestamp              core.Timestamp `json:"timestamp"`
	Assumptions            []string       `json:"assumptions"`
}

// Result pairs the per-nuclide rows with the run summary.
type Result struct {
	Rows    []ResultRow `json:"rows"`
	Summary Summary     `json:"summary"`
}

// Options are the caller-supplied knobs for one computation.
type Options struct {
	Category           string `json:"category,omitempty"`
	CombineDuplicates  bool   `json:"combine_duplicates"`
	TreatMissingAsZero bool   `json:"treat_missing_as_zero"`
	DisplaySigFigs     int    `json:"display_sigfigs"`
}

// DefaultOptions returns the standard settings: combine duplicate nuclides,
// treat a missing limit as zero contribution, four significant figures.
func DefaultOptions() Options {
	return Options{
		CombineDuplicates:  true,
		TreatMissingAsZero: true,
		DisplaySigFigs:     4,
	}
}

// Run records one complete computation for persistence and audit.
type Run struct {
	ID          core.RunID     `json:"id"`
	CreatedAt   core.Timestamp `json:"created_at"`
	SamplesPath string         `json:"samples_path,omitempty"`
	LimitsPath  string         `json:"limits_path,omitempty"`
	SamplesHash core.Hash      `json:"samples_sha256,omitempty"`
	LimitsHash  core.Hash      `json:"limits_sha256,omitempty"`
	Options     Options        `json:"options"`
	Result      Result         `json:"result"`
	RuntimeMs   int64          `json:"runtime_ms"`
}

// Package engine implements the sum-of-fractions pipeline: align samples to
// limits on canonical nuclide identity, convert units, aggregate duplicates,
// and compute per-row and total fractions with uncertainty propagation.
package engine

import (
	"gosof/domain/sof"
	"gosof/internal/nuclide"
)

// Engine is a pure computation core. It never prints, logs, or touches the
// filesystem; each Compute call is a function of its inputs plus the
// canonicalizer's immutable alias table.
type Engine struct {
	canon *nuclide.Canonicalizer
}

// New creates an engine around a canonicalizer.
func New(canon *nuclide.Canonicalizer) *Engine {
	return &Engine{canon: canon}
}

// Compute runs the full pipeline over two loaded tables. The caller either
// receives a complete, consistent result or a single descriptive failure;
// there are no partial results.
func (e *Engine) Compute(samplesTable, limitsTable *sof.Table, opts sof.Options) (*sof.Result, error) {
	samples, err := sof.DecodeSamples(samplesTable)
	if err != nil {
		return nil, err
	}
	limits, err := sof.DecodeLimits(limitsTable)
	if err != nil {
		return nil, err
	}

	matched, unmapped, missing, err := e.align(samples, limits, limitsTable.HasColumn("category"), opts)
	if err != nil {
		return nil, err
	}
	return e.aggregate(matched, opts, unmapped, missing), nil
}

package api

import (
	"gosof/domain/sof"
)

// ComputeRequestBody is the JSON body for POST /api/compute. Tables arrive
// already shaped: columns use the standard names, cells are strings.
type ComputeRequestBody struct {
	Samples *sof.Table   `json:"samples" binding:"required"`
	Limits  *sof.Table   `json:"limits" binding:"required"`
	Options *sof.Options `json:"options"`
}

// ComputeResponse returns the run identifier with the result so the caller
// can fetch the report later.
type ComputeResponse struct {
	RunID  string     `json:"run_id"`
	Result sof.Result `json:"result"`
}

// RunSummaryResponse is one row in the run listing.
type RunSummaryResponse struct {
	RunID     string  `json:"run_id"`
	CreatedAt string  `json:"created_at"`
	SofTotal  float64 `json:"sof_total"`
	PassLimit bool    `json:"pass_limit"`
	RuleName  string  `json:"rule_name"`
}

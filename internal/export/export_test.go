package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"gosof/domain/core"
	"gosof/domain/sof"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleRun() *sof.Run {
	return &sof.Run{
		ID:        core.NewRunID(),
		CreatedAt: core.Now(),
		Options:   sof.DefaultOptions(),
		Result: sof.Result{
			Rows: []sof.ResultRow{
				{
					Nuclide:           "Cs-137",
					ConcDisplay:       "1 Bq/g",
					LimitDisplay:      "2 Bq/g",
					Fraction:          0.5,
					FractionDisplay:   "0.5",
					FractionSigma:     sof.SigmaOf(0.05),
					AllowedAdditional: 1.0,
				},
				{
					Nuclide:           "Sr-90",
					ConcDisplay:       "0.5 Bq/g",
					LimitDisplay:      "5 Bq/g",
					Fraction:          0.1,
					FractionDisplay:   "0.1",
					FractionSigma:     sof.NoSigma,
					AllowedAdditional: 4.5,
				},
			},
			Summary: sof.Summary{
				RuleName:  "10 CFR 20",
				SofTotal:  0.6,
				PassLimit: true,
				MarginTo1: 0.4,
				Version:   sof.Version,
				Timestamp: core.Now(),
				Assumptions: []string{
					"duplicate nuclides combined by summing converted values",
				},
			},
		},
	}
}

func TestWriteResultsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResultsCSV(&buf, &exampleRun().Result))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "Cs-137", records[1][0])
	assert.Equal(t, "0.5", records[1][3])
	assert.Equal(t, "0.05", records[1][4])
	// Absent sigma exports as an empty cell, not zero.
	assert.Equal(t, "", records[2][4])
}

func TestComputeFractionStats(t *testing.T) {
	run := exampleRun()
	fs, ok := ComputeFractionStats(&run.Result)
	require.True(t, ok)

	assert.Equal(t, 2, fs.Count)
	assert.InDelta(t, 0.3, fs.Mean, 1e-12)
	assert.InDelta(t, 0.3, fs.Median, 1e-12)
	assert.InDelta(t, 0.5, fs.Max, 1e-12)
	assert.InDelta(t, 0.5/0.6, fs.TopShare, 1e-12)
}

func TestComputeFractionStatsEmpty(t *testing.T) {
	_, ok := ComputeFractionStats(&sof.Result{})
	assert.False(t, ok)
}

func TestBuildMarkdownReport(t *testing.T) {
	run := exampleRun()
	md := BuildMarkdown(run)

	assert.Contains(t, md, "**Result: PASS**")
	assert.Contains(t, md, "| Cs-137 | 1 Bq/g | 2 Bq/g | 0.5 |")
	assert.Contains(t, md, "10 CFR 20")
	assert.Contains(t, md, "## Fraction Distribution")
	assert.Contains(t, md, "## Assumptions")
}

func TestBuildMarkdownFailVerdict(t *testing.T) {
	run := exampleRun()
	run.Result.Summary.PassLimit = false
	run.Result.Summary.SofTotal = 1.2
	run.Result.Summary.MarginTo1 = -0.2

	md := BuildMarkdown(run)
	assert.Contains(t, md, "**Result: FAIL**")
}

func TestRenderHTMLProducesTable(t *testing.T) {
	html := string(BuildHTML(exampleRun()))
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "Cs-137")
	assert.Contains(t, html, "<h1")
}

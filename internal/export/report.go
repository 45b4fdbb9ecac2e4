package export

import (
	"fmt"
	"strings"

	"gosof/domain/sof"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/montanaflynn/stats"
)

// FractionStats summarizes how the fractions are distributed across nuclides,
// which shows at a glance whether the total is dominated by one contributor.
type FractionStats struct {
	Count  int
	Mean   float64
	Median float64
	Max    float64
	// TopShare is the largest single fraction as a share of the total.
	TopShare float64
}

// ComputeFractionStats derives distribution statistics from the result rows.
// Returns ok=false when there are no rows.
func ComputeFractionStats(result *sof.Result) (FractionStats, bool) {
	if len(result.Rows) == 0 {
		return FractionStats{}, false
	}
	data := make(stats.Float64Data, len(result.Rows))
	for i, row := range result.Rows {
		data[i] = row.Fraction
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return FractionStats{}, false
	}
	median, err := stats.Median(data)
	if err != nil {
		return FractionStats{}, false
	}
	max, err := stats.Max(data)
	if err != nil {
		return FractionStats{}, false
	}

	fs := FractionStats{
		Count:  len(data),
		Mean:   mean,
		Median: median,
		Max:    max,
	}
	if result.Summary.SofTotal > 0 {
		fs.TopShare = max / result.Summary.SofTotal
	}
	return fs, true
}

// BuildMarkdown renders a run as a markdown report.
func BuildMarkdown(run *sof.Run) string {
	res := &run.Result
	sum := res.Summary

	var b strings.Builder
	fmt.Fprintf(&b, "# Sum of Fractions Report\n\n")

	verdict := "PASS"
	if !sum.PassLimit {
		verdict = "FAIL"
	}
	fmt.Fprintf(&b, "**Result: %s** (sum of fractions = %.6g, margin to 1 = %.6g)\n\n", verdict, sum.SofTotal, sum.MarginTo1)
	if sum.SofSigma.Valid {
		qualifier := ""
		if !sum.SigmaComplete {
			qualifier = " (lower bound; some rows carried no uncertainty)"
		}
		fmt.Fprintf(&b, "Combined uncertainty: %.6g%s\n\n", sum.SofSigma.Value, qualifier)
	}

	fmt.Fprintf(&b, "- Rule: %s\n", sum.RuleName)
	if sum.Category != "" {
		fmt.Fprintf(&b, "- Category: %s\n", sum.Category)
	}
	fmt.Fprintf(&b, "- Run ID: %s\n", run.ID)
	fmt.Fprintf(&b, "- Computed: %s (engine %s)\n", sum.Timestamp, sum.Version)
	if run.SamplesPath != "" {
		fmt.Fprintf(&b, "- Samples: %s (sha256 %s)\n", run.SamplesPath, run.SamplesHash)
	}
	if run.LimitsPath != "" {
		fmt.Fprintf(&b, "- Limits: %s (sha256 %s)\n", run.LimitsPath, run.LimitsHash)
	}
	b.WriteString("\n")

	b.WriteString("## Per-Nuclide Fractions\n\n")
	b.WriteString("| Nuclide | Concentration | Limit | Fraction | Headroom (limit units) | Note |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, row := range res.Rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %.6g | %s |\n",
			row.Nuclide, row.ConcDisplay, row.LimitDisplay, row.FractionDisplay, row.AllowedAdditional, row.Note)
	}
	b.WriteString("\n")

	if fs, ok := ComputeFractionStats(res); ok && fs.Count > 1 {
		b.WriteString("## Fraction Distribution\n\n")
		fmt.Fprintf(&b, "- Nuclides: %d\n", fs.Count)
		fmt.Fprintf(&b, "- Mean fraction: %.6g\n", fs.Mean)
		fmt.Fprintf(&b, "- Median fraction: %.6g\n", fs.Median)
		fmt.Fprintf(&b, "- Largest fraction: %.6g (%.1f%% of total)\n", fs.Max, fs.TopShare*100)
		b.WriteString("\n")
	}

	if len(sum.MissingLimitForSamples) > 0 {
		b.WriteString("## Samples Without a Limit\n\n")
		for _, n := range sum.MissingLimitForSamples {
			fmt.Fprintf(&b, "- %s\n", n)
		}
		b.WriteString("\n")
	}
	if len(sum.UnmappedAliases) > 0 {
		b.WriteString("## Unrecognized Nuclide Labels\n\n")
		for _, n := range sum.UnmappedAliases {
			fmt.Fprintf(&b, "- %s\n", n)
		}
		b.WriteString("\n")
	}

	if len(sum.Assumptions) > 0 {
		b.WriteString("## Assumptions\n\n")
		for _, a := range sum.Assumptions {
			fmt.Fprintf(&b, "- %s\n", a)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderHTML converts a markdown report to an HTML fragment.
func RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}

// BuildHTML renders a run as a standalone HTML fragment.
func BuildHTML(run *sof.Run) []byte {
	return RenderHTML(BuildMarkdown(run))
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gosof/adapters/excel"
	"gosof/app"
	"gosof/domain/sof"
	gosof "gosof/internal"
	"gosof/internal/audit"
	"gosof/internal/config"
	"gosof/internal/engine"
	"gosof/internal/export"
	"gosof/internal/nuclide"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional for the CLI; environment variables win either way.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "sof",
		Short: "Sum-of-fractions compliance calculator for radiological samples",
	}

	rootCmd.AddCommand(
		newComputeCmd(),
		newBatchCmd(),
		newAliasesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type computeFlags struct {
	category      string
	sigFigs       int
	keepDuplicate bool
	failOnMissing bool
	aliasPath     string
	auditPath     string
	csvPath       string
	reportPath    string
	jsonOutput    bool
}

// registerOptions covers the flags shared by compute and batch.
func (f *computeFlags) registerOptions(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.category, "category", "", "Limit category to apply (requires a category column in the limits table)")
	cmd.Flags().IntVar(&f.sigFigs, "sigfigs", 0, "Significant figures for display values (0 = default)")
	cmd.Flags().BoolVar(&f.keepDuplicate, "keep-duplicates", false, "Keep duplicate nuclide rows as separate fractions instead of summing them")
	cmd.Flags().BoolVar(&f.failOnMissing, "fail-on-missing", false, "Fail when a sample nuclide has no limit instead of treating it as zero")
	cmd.Flags().StringVar(&f.aliasPath, "aliases", "", "Nuclide alias file (csv or json); overrides SOF_ALIAS_PATH")
}

// registerOutputs covers the single-run output flags.
func (f *computeFlags) registerOutputs(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.auditPath, "audit", "", "Write an audit JSON record to this path")
	cmd.Flags().StringVar(&f.csvPath, "csv", "", "Write per-nuclide results as CSV to this path")
	cmd.Flags().StringVar(&f.reportPath, "report", "", "Write a report to this path (.md or .html)")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Print the full result as JSON instead of a summary")
}

func (f *computeFlags) options() sof.Options {
	opts := sof.DefaultOptions()
	opts.Category = f.category
	opts.CombineDuplicates = !f.keepDuplicate
	opts.TreatMissingAsZero = !f.failOnMissing
	if f.sigFigs > 0 {
		opts.DisplaySigFigs = f.sigFigs
	}
	return opts
}

func newComputeCmd() *cobra.Command {
	flags := &computeFlags{}

	cmd := &cobra.Command{
		Use:   "compute <samples-file> <limits-file>",
		Short: "Compute the sum of fractions for one sample file",
		Long: `Compute the sum of fractions for a sample table against a limit table.

Input files may be .xlsx or .csv. Column headers are matched loosely
(e.g. "Isotope" works for "nuclide").

Example: sof compute samples.xlsx limits.xlsx --category effluent --audit out/audit.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newComputeService(flags.aliasPath)
			run, err := svc.ComputeFiles(cmd.Context(), app.ComputeRequest{
				SamplesPath: args[0],
				LimitsPath:  args[1],
				Options:     flags.options(),
			})
			if err != nil {
				return err
			}
			if err := writeOutputs(run, flags); err != nil {
				return err
			}
			return printRun(cmd, run, flags.jsonOutput)
		},
	}

	flags.registerOptions(cmd)
	flags.registerOutputs(cmd)
	return cmd
}

func newBatchCmd() *cobra.Command {
	flags := &computeFlags{}
	var limitsPath, outDir string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "batch <samples-file>...",
		Short: "Compute the sum of fractions for many sample files against one limits file",
		Long: `Evaluate several sample files against a shared limits file.

Each job writes an audit record into --out-dir named after the sample file.
Jobs run concurrently; one failing job does not stop the rest.

Example: sof batch week*.csv --limits limits.xlsx --out-dir audits/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newComputeService(flags.aliasPath)
			batch := app.NewBatchService(svc, nil)

			jobs := make([]app.BatchJob, len(args))
			for i, path := range args {
				jobs[i] = app.BatchJob{
					SamplesPath: path,
					LimitsPath:  limitsPath,
					Options:     flags.options(),
				}
			}

			results, err := batch.RunAll(cmd.Context(), jobs, concurrency)
			if err != nil {
				return err
			}

			failures := 0
			for _, res := range results {
				name := filepath.Base(res.Job.SamplesPath)
				if res.Err != nil {
					failures++
					fmt.Fprintf(cmd.OutOrStdout(), "%-30s ERROR: %v\n", name, res.Err)
					continue
				}
				sum := res.Run.Result.Summary
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s sof=%.6g pass=%t margin=%.6g\n",
					name, sum.SofTotal, sum.PassLimit, sum.MarginTo1)
				if outDir != "" {
					auditPath := filepath.Join(outDir, auditFileName(name))
					if err := audit.WriteRun(auditPath, res.Run); err != nil {
						return err
					}
				}
			}
			if failures > 0 {
				return fmt.Errorf("%d of %d jobs failed", failures, len(results))
			}
			return nil
		},
	}

	flags.registerOptions(cmd)
	cmd.Flags().StringVar(&limitsPath, "limits", "", "Limits file shared by all jobs (required)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for per-job audit records")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Maximum jobs in flight")
	_ = cmd.MarkFlagRequired("limits")
	return cmd
}

func newAliasesCmd() *cobra.Command {
	var aliasPath string

	cmd := &cobra.Command{
		Use:   "aliases",
		Short: "Show the effective nuclide alias table",
		RunE: func(cmd *cobra.Command, args []string) error {
			dataCfg := config.LoadData()
			if aliasPath == "" {
				aliasPath = dataCfg.AliasPath
			}
			paths := nuclide.CandidatePaths(aliasPath, dataCfg.DataDir)
			aliases := nuclide.BuildAliasMap(paths)

			fmt.Fprintf(cmd.OutOrStdout(), "Searched paths:\n")
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d aliases loaded\n", aliases.Len())
			for alias, canonical := range aliases.Entries() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s -> %s\n", alias, canonical)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&aliasPath, "aliases", "", "Nuclide alias file (csv or json); overrides SOF_ALIAS_PATH")
	return cmd
}

// newComputeService wires the file-based pipeline without persistence.
func newComputeService(aliasOverride string) *app.ComputeService {
	dataCfg := config.LoadData()
	if aliasOverride == "" {
		aliasOverride = dataCfg.AliasPath
	}
	aliases := nuclide.BuildAliasMap(nuclide.CandidatePaths(aliasOverride, dataCfg.DataDir))
	eng := engine.New(nuclide.NewCanonicalizer(aliases))
	return app.NewComputeService(excel.NewDataReader(gosof.DefaultLogger), eng, nil, gosof.DefaultLogger)
}

func writeOutputs(run *sof.Run, flags *computeFlags) error {
	if flags.auditPath != "" {
		if err := audit.WriteRun(flags.auditPath, run); err != nil {
			return err
		}
	}
	if flags.csvPath != "" {
		if err := export.ExportCSV(flags.csvPath, &run.Result); err != nil {
			return err
		}
	}
	if flags.reportPath != "" {
		md := export.BuildMarkdown(run)
		data := []byte(md)
		if strings.EqualFold(filepath.Ext(flags.reportPath), ".html") {
			data = export.RenderHTML(md)
		}
		if err := os.WriteFile(flags.reportPath, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func printRun(cmd *cobra.Command, run *sof.Run, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	sum := run.Result.Summary
	out := cmd.OutOrStdout()

	verdict := "PASS"
	if !sum.PassLimit {
		verdict = "FAIL"
	}
	fmt.Fprintf(out, "%s: sum of fractions = %.6g (margin to 1 = %.6g)\n", verdict, sum.SofTotal, sum.MarginTo1)
	if sum.SofSigma.Valid {
		note := ""
		if !sum.SigmaComplete {
			note = " (lower bound)"
		}
		fmt.Fprintf(out, "uncertainty: %.6g%s\n", sum.SofSigma.Value, note)
	}
	fmt.Fprintf(out, "rule: %s\n\n", sum.RuleName)

	for _, row := range run.Result.Rows {
		fmt.Fprintf(out, "  %-12s %14s / %-14s fraction %s\n",
			row.Nuclide, row.ConcDisplay, row.LimitDisplay, row.FractionDisplay)
	}

	if len(sum.MissingLimitForSamples) > 0 {
		fmt.Fprintf(out, "\nno limit found (treated as zero): %s\n", strings.Join(sum.MissingLimitForSamples, ", "))
	}
	if len(sum.UnmappedAliases) > 0 {
		fmt.Fprintf(out, "unrecognized nuclide labels: %s\n", strings.Join(sum.UnmappedAliases, ", "))
	}
	return nil
}

func auditFileName(sampleName string) string {
	base := strings.TrimSuffix(sampleName, filepath.Ext(sampleName))
	return base + "_audit.json"
}

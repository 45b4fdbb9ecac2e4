// Package export renders completed results for people: CSV for spreadsheets
// and a markdown/HTML report for review. Everything here is
// presentation-only; nothing feeds back into computation.
package export

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gosof/domain/sof"
	"gosof/internal/errors"
)

var csvHeader = []string{
	"nuclide",
	"concentration",
	"limit",
	"fraction",
	"fraction_sigma",
	"allowed_additional_in_limit_units",
	"note",
}

// WriteResultsCSV writes the per-nuclide rows to w. Display strings are used
// for concentration and limit so the CSV matches what the report shows.
func WriteResultsCSV(w io.Writer, result *sof.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range result.Rows {
		sigma := ""
		if row.FractionSigma.Valid {
			sigma = strconv.FormatFloat(row.FractionSigma.Value, 'g', -1, 64)
		}
		record := []string{
			row.Nuclide,
			row.ConcDisplay,
			row.LimitDisplay,
			strconv.FormatFloat(row.Fraction, 'g', -1, 64),
			sigma,
			strconv.FormatFloat(row.AllowedAdditional, 'g', -1, 64),
			row.Note,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the rows to path, creating parent directories as needed.
func ExportCSV(path string, result *sof.Result) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.FileError(path, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.FileError(path, err)
	}
	defer f.Close()

	if err := WriteResultsCSV(f, result); err != nil {
		return errors.FileError(path, err)
	}
	return nil
}

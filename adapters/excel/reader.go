package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gosof/domain/core"
	"gosof/domain/sof"
	gosof "gosof/internal"
	"gosof/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader loads sample and limit tables from Excel and CSV files. It owns
// column-header normalization, so the tables it returns always carry the
// standard column names.
type DataReader struct {
	log *gosof.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(log *gosof.Logger) *DataReader {
	if log == nil {
		log = gosof.DefaultLogger
	}
	return &DataReader{log: log.Named("DataReader")}
}

// ReadSamples loads a samples table from path.
func (r *DataReader) ReadSamples(path string) (*sof.Table, error) {
	return r.readTable(path, "samples", sampleColumnAliases, sampleColumnOrder, sof.RequiredSampleColumns)
}

// ReadLimits loads a limits table from path.
func (r *DataReader) ReadLimits(path string) (*sof.Table, error) {
	return r.readTable(path, "limits", limitColumnAliases, limitColumnOrder, sof.RequiredLimitColumns)
}

func (r *DataReader) readTable(path, kind string, aliases map[string][]string, order, required []string) (*sof.Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.FileError(path, fmt.Errorf("%s file not found", kind))
	}

	start := time.Now()
	var rows [][]string
	var err error
	switch fileType(path) {
	case "csv":
		rows, err = readCSVRows(path)
	case "xlsx":
		rows, err = readExcelRows(path)
	default:
		return nil, errors.FileError(path, fmt.Errorf("unsupported file type %q", filepath.Ext(path)))
	}
	if err != nil {
		return nil, errors.FileError(path, err)
	}
	r.log.Debug("%s file read in %.2fms (%d rows)", kind, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.FileError(path, fmt.Errorf("%s file must have a header row and at least one data row", kind))
	}

	table, err := buildTable(rows, kind, aliases, order, required)
	if err != nil {
		return nil, err
	}
	r.log.Info("%s table loaded: %d columns, %d rows", kind, len(table.Columns), len(table.Rows))
	return table, nil
}

func fileType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".xlsx", ".xlsm":
		return "xlsx"
	default:
		return ""
	}
}

func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	// First sheet, whatever its name.
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// buildTable normalizes headers and converts raw rows into the core's table
// shape. Columns that match no alias are dropped.
func buildTable(raw [][]string, kind string, aliases map[string][]string, order, required []string) (*sof.Table, error) {
	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = strings.TrimSpace(h)
	}
	mapped := mapHeaders(headers, aliases, order)

	present := make(map[string]bool, len(mapped))
	for _, std := range mapped {
		present[std] = true
	}
	var missing []string
	for _, req := range required {
		if !present[req] {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, core.NewSchemaError(kind, missing)
	}

	var columns []string
	for _, std := range order {
		if present[std] {
			columns = append(columns, std)
		}
	}

	tableRows := make([]sof.Row, 0, len(raw)-1)
	for _, line := range raw[1:] {
		row := make(sof.Row, len(columns))
		empty := true
		for j, cell := range line {
			if j >= len(headers) {
				break
			}
			std, ok := mapped[headers[j]]
			if !ok {
				continue
			}
			value := strings.TrimSpace(cell)
			row[std] = value
			if value != "" {
				empty = false
			}
		}
		// Trailing blank rows are common in spreadsheets; skip them.
		if empty {
			continue
		}
		tableRows = append(tableRows, row)
	}

	return &sof.Table{Columns: columns, Rows: tableRows}, nil
}

package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gradscope/domain/dataset"
	"gradscope/internal"
	"gradscope/internal/errors"
)

// DataReader reads the graduates table from a CSV or XLSX file
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
	logger   *internal.Logger
}

// NewDataReader creates a reader; the file type follows the extension and
// defaults to xlsx.
func NewDataReader(filePath string, logger *internal.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: logger}
}

// WithSheet reads the named worksheet instead of the first one
func (r *DataReader) WithSheet(sheet string) *DataReader {
	r.sheet = sheet
	return r
}

// Describe implements ports.DatasetSource
func (r *DataReader) Describe() string {
	return fmt.Sprintf("%s file %s", r.fileType, r.filePath)
}

// Load implements ports.DatasetSource
func (r *DataReader) Load(ctx context.Context) (*dataset.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.logger.Info("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.DatasetLoad(fmt.Sprintf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath), err)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	}
	return nil, errors.DatasetLoad(fmt.Sprintf("unsupported file type: %s", r.fileType), nil)
}

func (r *DataReader) readExcelData() (*dataset.RawTable, error) {
	start := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.DatasetLoad("failed to open Excel file", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.DatasetLoad(fmt.Sprintf("failed to read sheet %s", sheet), err)
	}
	r.logger.Debug("[DataReader] Sheet %s read in %.2fms (%d rows)", sheet, msSince(start), len(rows))

	return r.processRows(rows)
}

func (r *DataReader) readCSVData() (*dataset.RawTable, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.DatasetLoad("failed to open CSV file", err)
	}
	defer file.Close()

	start := time.Now()
	rows, err := ReadCSV(file)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("[DataReader] CSV file read in %.2fms (%d rows)", msSince(start), len(rows))

	return r.processRows(rows)
}

// ReadCSV reads every record of a delimited stream. Rows may have differing
// field counts; short rows are padded later.
func ReadCSV(in io.Reader) ([][]string, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.DatasetLoad("failed to read CSV file", err)
	}
	return rows, nil
}

// processRows splits the header row off and trims every cell
func (r *DataReader) processRows(rows [][]string) (*dataset.RawTable, error) {
	table, err := TableFromRows(rows)
	if err != nil {
		return nil, err
	}
	r.logger.Info("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(table.Headers), len(table.Rows))
	return table, nil
}

// TableFromRows builds a RawTable from a header row followed by data rows.
func TableFromRows(rows [][]string) (*dataset.RawTable, error) {
	if len(rows) == 0 {
		return nil, errors.DatasetLoad("file has no header row", nil)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				cells[j] = strings.TrimSpace(cell)
			}
		}
		data = append(data, cells)
	}
	return &dataset.RawTable{Headers: headers, Rows: data}, nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Nanoseconds()) / 1e6
}

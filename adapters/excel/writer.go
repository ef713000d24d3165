package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"gradscope/domain/dataset"
	"gradscope/internal/errors"
	"gradscope/ports"
)

// ExportSheet is the worksheet name used for XLSX exports
const ExportSheet = "Graduates"

// NewExporter returns the exporter for "csv" or "xlsx".
func NewExporter(format string) (ports.TableExporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "csv":
		return CSVExporter{}, nil
	case "xlsx":
		return XLSXExporter{Sheet: ExportSheet}, nil
	}
	return nil, errors.InvalidInput(fmt.Sprintf("unsupported export format %q", format))
}

// CSVExporter writes the row-set as comma separated text. Missing cells are empty.
type CSVExporter struct{}

func (CSVExporter) ContentType() string { return "text/csv" }
func (CSVExporter) Extension() string   { return "csv" }

func (CSVExporter) Export(ds *dataset.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ds.Columns()); err != nil {
		return nil, errors.Wrap(err, "failed to write CSV header")
	}
	for i := 0; i < ds.Len(); i++ {
		row := ds.Row(i)
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = v.Text()
		}
		if err := w.Write(record); err != nil {
			return nil, errors.Wrap(err, "failed to write CSV row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to flush CSV")
	}
	return buf.Bytes(), nil
}

// XLSXExporter writes the row-set to a single worksheet with typed cells.
type XLSXExporter struct {
	Sheet string
}

func (XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (XLSXExporter) Extension() string { return "xlsx" }

func (e XLSXExporter) Export(ds *dataset.Dataset) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := e.Sheet
	if sheet == "" {
		sheet = ExportSheet
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, errors.Wrap(err, "failed to name sheet")
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open stream writer")
	}

	header := make([]interface{}, len(ds.Columns()))
	for i, c := range ds.Columns() {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, errors.Wrap(err, "failed to write header row")
	}

	for i := 0; i < ds.Len(); i++ {
		row := ds.Row(i)
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v.Interface()
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, errors.Wrap(err, "failed to address row")
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return nil, errors.Wrapf(err, "failed to write row %d", i+1)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, errors.Wrap(err, "failed to flush sheet")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialise workbook")
	}
	return buf.Bytes(), nil
}

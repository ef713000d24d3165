package excel

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradscope/domain/dataset"
	"gradscope/internal"
	"gradscope/internal/errors"
)

func sample() *dataset.Dataset {
	return dataset.New(
		[]string{"Year", "Education.Major", "Salaries.Median"},
		[]dataset.Row{
			{dataset.NewIntegerValue(2015), dataset.NewStringValue("Biology"), dataset.NewNumericValue(52000.5)},
			{dataset.NewIntegerValue(2010), dataset.NewStringValue("History, Modern"), dataset.NewMissingValue()},
		},
	)
}

func TestReadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graduates.csv")
	content := "\ufeffYear, Education.Major ,Demographics.Total\n2015,Biology,10\n2010,\"History, Modern\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := NewDataReader(path, internal.NewNopLogger()).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Year", "Education.Major", "Demographics.Total"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"2015", "Biology", "10"}, table.Rows[0])
	assert.Equal(t, []string{"2010", "History, Modern", ""}, table.Rows[1], "short rows padded")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.csv"), internal.NewNopLogger()).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatasetLoad, errors.GetCode(err))
}

func TestLoadHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDataReader("whatever.csv", internal.NewNopLogger()).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTableFromRowsEmpty(t *testing.T) {
	_, err := TableFromRows(nil)
	assert.Error(t, err)

	table, err := TableFromRows([][]string{{"A", "B"}})
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}

func TestCSVExport(t *testing.T) {
	out, err := CSVExporter{}.Export(sample())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Year,Education.Major,Salaries.Median", lines[0])
	assert.Equal(t, "2015,Biology,52000.5", lines[1])
	assert.Equal(t, `2010,"History, Modern",`, lines[2])

	rows, err := ReadCSV(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestXLSXRoundTrip(t *testing.T) {
	out, err := XLSXExporter{}.Export(sample())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, os.WriteFile(path, out, 0o644))

	table, err := NewDataReader(path, internal.NewNopLogger()).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Year", "Education.Major", "Salaries.Median"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "2015", table.Rows[0][0])
	assert.Equal(t, "Biology", table.Rows[0][1])
	assert.Equal(t, "", table.Rows[1][2])
}

func TestNewExporter(t *testing.T) {
	e, err := NewExporter("XLSX")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", e.Extension())

	e, err = NewExporter("")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", e.ContentType())

	_, err = NewExporter("parquet")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

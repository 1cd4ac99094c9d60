package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/billing/internal/models"
)

var sampleRecords = []models.Record{
	{BillID: 1, CustomerName: "Ann", Email: "ann@x.com", Amount: decimal.RequireFromString("50"), Date: "2024-03-01", Time: "09:15:00"},
	{BillID: 2, CustomerName: "Bob", Email: "bob@x.com", Amount: decimal.RequireFromString("19.99"), Date: "2024-03-02", Time: "17:45:30"},
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"out.csv", FormatCSV},
		{"OUT.CSV", FormatCSV},
		{"out.xlsx", FormatXLSX},
		{"out", FormatXLSX},
		{"dir.csv/out.xlsx", FormatXLSX},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFor(tt.path))
		})
	}
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleRecords))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"1", "Ann", "ann@x.com", "50.00", "2024-03-01", "09:15:00"}, rows[1])
	assert.Equal(t, []string{"2", "Bob", "bob@x.com", "19.99", "2024-03-02", "17:45:30"}, rows[2])
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("ods"), sampleRecords)
	assert.Error(t, err)
}

func TestWriteFile_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "BillingRecords.xlsx")
	require.NoError(t, WriteFile(path, sampleRecords))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "Ann", rows[1][1])
	assert.Equal(t, "ann@x.com", rows[1][2])
	assert.Equal(t, "50.00", rows[1][3])
	assert.Equal(t, "19.99", rows[2][3])
	assert.Equal(t, "17:45:30", rows[2][5])
}

func TestWriteFile_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale contents that are longer than the export\n"), 0644))

	require.NoError(t, WriteFile(path, sampleRecords[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Bill ID,Customer Name,Email,Amount,Date,Time\n1,Ann,ann@x.com,50.00,2024-03-01,09:15:00\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should not be left behind")
}

func TestWriteFile_EmptyRecordsWritesHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, WriteFile(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Bill ID,Customer Name,Email,Amount,Date,Time\n", string(data))
}

func TestWriteFile_UnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := WriteFile(filepath.Join(blocker, "out.xlsx"), sampleRecords)
	assert.Error(t, err)
}

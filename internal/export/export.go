// Package export writes billing records to spreadsheet files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mmynk/billing/internal/models"
)

// Format selects the spreadsheet encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DefaultFilename is used when no destination is given.
const DefaultFilename = "BillingRecords.xlsx"

// SheetName is the worksheet records are written to.
const SheetName = "Sheet1"

// Header is the first row of every export.
var Header = []string{"Bill ID", "Customer Name", "Email", "Amount", "Date", "Time"}

// FormatFor picks the format from the file extension. Anything that is not
// .csv is written as a workbook.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatXLSX
}

// Write encodes records to w, one row per record under the header row.
func Write(w io.Writer, format Format, records []models.Record) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, records)
	case FormatXLSX:
		return writeXLSX(w, records)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteFile replaces path with a fresh export of records. The data is written
// to a temp file in the same directory and renamed over path, so readers never
// see a partial file.
func WriteFile(path string, records []models.Record) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = Write(tmp, FormatFor(path), records); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func writeCSV(w io.Writer, records []models.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.BillID, 10),
			r.CustomerName,
			r.Email,
			models.FormatAmount(r.Amount),
			r.Date,
			r.Time,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row for bill %d: %w", r.BillID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, records []models.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.BillID,
			r.CustomerName,
			r.Email,
			r.Amount.InexactFloat64(),
			r.Date,
			r.Time,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row for bill %d: %w", r.BillID, err)
		}
	}

	if len(records) > 0 {
		// Built-in number format 2 is "0.00".
		style, err := f.NewStyle(&excelize.Style{NumFmt: 2})
		if err != nil {
			return fmt.Errorf("failed to create amount style: %w", err)
		}
		last := fmt.Sprintf("D%d", len(records)+1)
		if err := f.SetCellStyle(SheetName, "D2", last, style); err != nil {
			return fmt.Errorf("failed to style amounts: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

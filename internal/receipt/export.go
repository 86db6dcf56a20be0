package receipt

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

const (
	createdLayout = "2006-01-02 15:04:05"
	exportSheet   = "Receipts"
)

var exportHeaders = []string{"Vendor", "Date", "Amount", "Category", "Created"}

// Export describes a written export
type Export struct {
	ContentType string
	Filename    string
}

// Export writes the receipts matching filter to w in the given format,
// csv when format is empty
func (s *Service) Export(ctx context.Context, filter Filter, format string, w io.Writer) (Export, error) {
	if format == "" {
		format = FormatCSV
	}

	var export Export
	switch format {
	case FormatCSV:
		export = Export{ContentType: "text/csv", Filename: "receipts.csv"}
	case FormatJSON:
		export = Export{ContentType: "application/json", Filename: "receipts.json"}
	case FormatXLSX:
		export = Export{
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Filename:    "receipts.xlsx",
		}
	default:
		return Export{}, ValidationErrors{{Field: "format", Value: format, Message: "format must be one of: csv, json, xlsx"}}
	}

	receipts, err := s.ListReceipts(ctx, filter)
	if err != nil {
		return Export{}, err
	}

	switch format {
	case FormatJSON:
		err = writeJSONExport(w, receipts)
	case FormatXLSX:
		err = writeXLSXExport(w, receipts)
	default:
		err = writeCSVExport(w, receipts)
	}
	if err != nil {
		return Export{}, fmt.Errorf("writing %s export: %w", format, err)
	}
	return export, nil
}

func exportRow(r *Receipt) []string {
	return []string{
		r.Vendor,
		r.TransactionDate.Format(dateLayout),
		r.Amount.StringFixed(2),
		string(r.Category),
		r.CreatedAt.Format(createdLayout),
	}
}

func writeCSVExport(w io.Writer, receipts []*Receipt) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeaders); err != nil {
		return err
	}
	for _, r := range receipts {
		if err := cw.Write(exportRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSONExport(w io.Writer, receipts []*Receipt) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(receipts)
}

func writeXLSXExport(w io.Writer, receipts []*Receipt) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return err
		}
	}

	for i, r := range receipts {
		row := i + 2
		values := []any{
			r.Vendor,
			r.TransactionDate.Format(dateLayout),
			r.Amount.InexactFloat64(),
			string(r.Category),
			r.CreatedAt.Format(createdLayout),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return err
			}
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 28)
	_ = f.SetColWidth(exportSheet, "B", "B", 12)
	_ = f.SetColWidth(exportSheet, "E", "E", 20)

	return f.Write(w)
}

package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXMIMEType is the content type of XLSX artifacts
const XLSXMIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// XLSXSheetName names the single worksheet of an exported workbook
const XLSXSheetName = "Export"

// MarshalXLSX serializes ds as a single-sheet workbook. Cells hold the same
// string forms as the CSV output. An empty dataset yields nil.
func MarshalXLSX(ds Dataset, cols Columns) ([]byte, error) {
	if len(ds) == 0 {
		return nil, nil
	}
	cols = ResolveColumns(ds, cols)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), XLSXSheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(XLSXSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream writer: %w", err)
	}

	writeRow := func(rowNum int, cells []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(cells))
		for i, c := range cells {
			values[i] = c
		}
		return sw.SetRow(cell, values)
	}

	if err := writeRow(1, cols.Headers()); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}
	for i, r := range ds {
		if err := writeRow(i+2, cols.Row(r)); err != nil {
			return nil, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Package export renders job results as downloadable workbooks.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/rappahq/docex-be/internal/api/model"
)

const sheetName = "Extracted Data"

// XLSXContentType is the MIME type for the workbooks this package produces.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// JobWorkbook returns an XLSX workbook (as bytes) with one row per extracted
// field of the given job. Edited values win over the originals, matching what
// the dashboard shows.
func JobWorkbook(job *model.Job, fields []model.ExtractedField) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{"Field Name", "Value", "Confidence", "Edited"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	if err == nil {
		_ = f.SetCellStyle(sheetName, "A1", "D1", headerStyle)
	}

	row := 2
	for _, fld := range fields {
		value := fld.OriginalValue.String
		if fld.IsEdited && fld.EditedValue.Valid {
			value = fld.EditedValue.String
		}

		cells := []any{fld.FieldName, value, "", fld.IsEdited}
		if fld.Confidence.Valid {
			cells[2] = fld.Confidence.Float64
		}

		for i, v := range cells {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row, err)
			}
		}
		row++
	}

	infoCell, _ := excelize.CoordinatesToCellName(1, row+1)
	_ = f.SetCellValue(sheetName, infoCell, fmt.Sprintf("Source: %s (%s)", job.Filename, job.Status))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	return buf.Bytes(), nil
}

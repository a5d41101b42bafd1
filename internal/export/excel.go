// Package export renders booking listings as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the bookings table.
const SheetName = "Bookings"

// Columns is the header row of the bookings sheet.
var Columns = []string{"ID", "Desk", "Name", "From", "Until"}

// BookingRow is one line of the export.
type BookingRow struct {
	ID    uint64
	Desk  string
	Name  string
	Start time.Time
	End   time.Time
}

// WriteBookings writes rows as an .xlsx workbook to w.
func WriteBookings(w io.Writer, rows []BookingRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, col := range Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, col); err != nil {
			return err
		}
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(Columns), 1)
		_ = f.SetCellStyle(SheetName, "A1", last, style)
	}

	for r, row := range rows {
		values := []interface{}{
			row.ID,
			row.Desk,
			row.Name,
			row.Start.UTC().Format("2006-01-02 15:04"),
			row.End.UTC().Format("2006-01-02 15:04"),
		}
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("write %s: %w", cell, err)
			}
		}
	}
	_ = f.SetColWidth(SheetName, "C", "C", 24)
	_ = f.SetColWidth(SheetName, "D", "E", 18)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Package export renders inventory reports for download.
package export

import (
	"fmt"
	"io"

	"labreserve/internal/booking"

	"github.com/xuri/excelize/v2"
)

// WriteFreezerReport writes an xlsx workbook with one sheet of boxes in use
// (including occupancy age) and one of available boxes.
func WriteFreezerReport(w io.Writer, list *booking.FreezerList) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "In use")
	if err := writeInUseSheet(f, "In use", list.InUse); err != nil {
		return err
	}

	if _, err := f.NewSheet("Available"); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeAvailableSheet(f, "Available", list); err != nil {
		return err
	}

	if err := setHeaderStyle(f, "In use", 6); err != nil {
		return err
	}
	if err := setHeaderStyle(f, "Available", 1); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeInUseSheet(f *excelize.File, sheet string, boxes []booking.BoxView) error {
	headers := []any{"Box", "Actor", "Start date", "Days used", "Overdue days", "Priority"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	for i, b := range boxes {
		row := []any{
			b.BoxName,
			b.ActorName,
			b.StartDate.Format("2006-01-02"),
			b.Usage.DaysUsed,
			b.Usage.OverdueDays,
			b.Usage.Priority,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeAvailableSheet(f *excelize.File, sheet string, list *booking.FreezerList) error {
	headers := []any{"Box"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	for i, b := range list.Available {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{b.BoxName}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func setHeaderStyle(f *excelize.File, sheet string, cols int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	endCell, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", endCell, style)
}

package report

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	attendanceSheet = "Attendance"
	summarySheet    = "Summary"
)

// WriteExcel renders rep as a workbook with an Attendance and a Summary sheet.
func WriteExcel(w io.Writer, rep Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", attendanceSheet); err != nil {
		return errors.Wrap(err, "renaming sheet")
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return errors.Wrap(err, "creating summary sheet")
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}

	if err := f.SetSheetRow(attendanceSheet, "A1", &[]interface{}{"Person ID", "Person", "Date", "Entry", "Exit", "Worked", "Minutes", "Late"}); err != nil {
		return errors.Wrap(err, "writing attendance header")
	}
	for i, row := range rep.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		late := "no"
		if row.Late {
			late = "yes"
		}
		if err := f.SetSheetRow(attendanceSheet, cell, &[]interface{}{
			row.PersonID, row.PersonName, row.Date, row.Entry, row.Exit, row.Worked, row.MinutesWorked, late,
		}); err != nil {
			return errors.Wrapf(err, "writing attendance row %d", i+2)
		}
	}

	if err := f.SetSheetRow(summarySheet, "A1", &[]interface{}{"Person ID", "Person", "Days", "Total", "Minutes", "Late arrivals"}); err != nil {
		return errors.Wrap(err, "writing summary header")
	}
	for i, sum := range rep.Summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(summarySheet, cell, &[]interface{}{
			sum.PersonID, sum.PersonName, sum.Days, sum.Total, sum.TotalMinutes, sum.LateArrivals,
		}); err != nil {
			return errors.Wrapf(err, "writing summary row %d", i+2)
		}
	}
	totalCell, _ := excelize.CoordinatesToCellName(1, len(rep.Summary)+3)
	if err := f.SetSheetRow(summarySheet, totalCell, &[]interface{}{"Total", "", "", rep.Total, rep.TotalMinutes, rep.LateArrivals}); err != nil {
		return errors.Wrap(err, "writing summary total")
	}

	for sheet, last := range map[string]string{attendanceSheet: "H1", summarySheet: "F1"} {
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return errors.Wrap(err, "styling header")
		}
		if err := f.SetColWidth(sheet, "A", "B", 24); err != nil {
			return errors.Wrap(err, "sizing columns")
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing report workbook")
	}
	return nil
}

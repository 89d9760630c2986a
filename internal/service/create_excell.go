package service

import (
	"io"

	"clocker/backend/internal/entity"
	"clocker/backend/internal/service/importer"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const personSheet = "Persons"

// WritePersonWorkbook writes the import template header followed by the
// given persons, so the same file works as an export and as a template.
func WritePersonWorkbook(w io.Writer, persons []entity.Person) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", personSheet); err != nil {
		return errors.Wrap(err, "renaming sheet")
	}

	header := make([]interface{}, len(importer.PersonColumns))
	for i, h := range importer.PersonColumns {
		header[i] = h
	}
	if err := f.SetSheetRow(personSheet, "A1", &header); err != nil {
		return errors.Wrap(err, "writing header")
	}

	for i, p := range persons {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(personSheet, cell, &[]interface{}{
			p.ID, p.Name, p.FirstLastName, p.SecondLastName, p.Nationality, p.IDDocument, p.ZoneCode,
		}); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}

	if err := f.SetColWidth(personSheet, "A", "G", 20); err != nil {
		return errors.Wrap(err, "sizing columns")
	}

	return f.Write(w)
}

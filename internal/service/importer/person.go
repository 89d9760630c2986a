// Package importer reads person lists from Excel workbooks.
package importer

import (
	"io"
	"strings"

	"clocker/backend/internal/entity"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

// PersonColumns is the header of the import template, in column order.
var PersonColumns = []string{
	"ID",
	"Name",
	"First last name",
	"Second last name",
	"Nationality",
	"ID document",
	"Zone code",
}

// ReadPersons parses the first sheet of an .xlsx workbook. Rows that are
// incomplete, use an unknown zone, repeat an id of the file or reuse an
// existing id are reported by their 1-based row number and skipped.
func ReadPersons(r io.Reader, existingIDs, zoneCodes map[string]struct{}) ([]entity.Person, []int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening workbook")
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("closing workbook")
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, errors.New("no worksheet found")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading rows")
	}

	var (
		persons        []entity.Person
		incompleteRows []int
		localIDs       = make(map[string]int)
	)

	for i, row := range rows {
		rowNumber := i + 1
		if i == 0 || isBlank(row) {
			continue
		}

		cell := func(idx int) string {
			if idx >= len(row) {
				return ""
			}
			return clean(row[idx])
		}

		id := cell(0)
		name := cell(1)
		zone := cell(6)

		if id == "" || name == "" || zone == "" || !entity.ValidPersonID(id) {
			incompleteRows = append(incompleteRows, rowNumber)
			continue
		}
		if _, ok := zoneCodes[zone]; !ok {
			incompleteRows = append(incompleteRows, rowNumber)
			continue
		}
		if _, ok := existingIDs[id]; ok {
			incompleteRows = append(incompleteRows, rowNumber)
			continue
		}
		if prev, ok := localIDs[id]; ok {
			log.Debug().Int("row", rowNumber).Int("previous", prev).Str("id", id).Msg("duplicate person id in import")
			incompleteRows = append(incompleteRows, rowNumber)
			continue
		}
		localIDs[id] = rowNumber

		persons = append(persons, entity.Person{
			ID:             id,
			Name:           name,
			FirstLastName:  cell(2),
			SecondLastName: cell(3),
			Nationality:    cell(4),
			IDDocument:     cell(5),
			ZoneCode:       zone,
			Active:         true,
		})
	}

	return persons, incompleteRows, nil
}

// clean trims the value, folds full-width forms to their ASCII equivalents
// and composes accents so that names compare equal however they were typed.
func clean(s string) string {
	return strings.TrimSpace(norm.NFC.String(norm.NFKC.String(s)))
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

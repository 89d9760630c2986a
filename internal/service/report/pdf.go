package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/pkg/errors"
)

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"Person", 62, "L"},
	{"Date", 28, "C"},
	{"Entry", 24, "C"},
	{"Exit", 24, "C"},
	{"Worked", 24, "C"},
	{"Late", 18, "C"},
}

// WritePDF renders rep as an A4 document: header, filter block, the
// attendance table and the per person summary.
func WritePDF(w io.Writer, rep Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(rep.Title, true)
	pdf.SetAuthor(rep.Company, true)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10,
			tr(fmt.Sprintf("%s - generated %s - page %d/{nb}", rep.Company, rep.GeneratedAt.Format("02/01/2006 15:04"), pdf.PageNo())),
			"", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(rep.Title), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	persons := "All"
	if len(rep.Filter.PersonIDs) > 0 {
		persons = strings.Join(rep.Filter.PersonIDs, ", ")
	}
	zone := "All"
	if rep.Filter.ZoneCode != "" {
		zone = rep.Filter.ZoneCode
	}
	for _, line := range []string{
		"Persons: " + persons,
		"Zone: " + zone,
		fmt.Sprintf("Range: %s - %s", rep.Filter.From.Format("02/01/2006"), rep.Filter.To.Format("02/01/2006")),
	} {
		pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	header := func() {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range rep.Rows {
		if pdf.GetY()+6 > pageHeight-bottom-15 {
			pdf.AddPage()
			header()
		}

		late := ""
		if row.Late {
			late = "yes"
		}
		values := []string{row.PersonName, row.Date, row.Entry, row.Exit, row.Worked, late}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, 6, tr(values[i]), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(rep.Rows) == 0 {
		pdf.CellFormat(0, 6, "No attendance in the selected range", "1", 1, "C", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 10)
	for _, h := range []struct {
		title string
		width float64
	}{{"Person", 80}, {"Days", 30}, {"Total", 40}, {"Late", 30}} {
		pdf.CellFormat(h.width, 7, h.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, sum := range rep.Summary {
		pdf.CellFormat(80, 6, tr(sum.PersonName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprint(sum.Days), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, sum.Total, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprint(sum.LateArrivals), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total worked: %s    Late arrivals: %d", rep.Total, rep.LateArrivals), "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "writing report pdf")
	}
	return nil
}

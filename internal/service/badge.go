package service

import (
	"bytes"
	"fmt"
	"io"

	"clocker/backend/internal/entity"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

const badgeQRSize = 256

// QRCode encodes the person id as a PNG QR code. The id is the payload read
// back by the QR clock endpoint.
func QRCode(personID string) ([]byte, error) {
	if personID == "" {
		return nil, errors.New("empty person id")
	}

	png, err := qrcode.Encode(personID, qrcode.Medium, badgeQRSize)
	if err != nil {
		return nil, errors.Wrap(err, "encoding qr code")
	}
	return png, nil
}

// WriteBadgeSheet lays out one badge per person, three columns by four rows
// per A4 page, with the QR code and the person's name and id.
func WriteBadgeSheet(w io.Writer, company string, persons []entity.Person) error {
	const (
		cols    = 3
		rows    = 4
		cellW   = 63.0
		cellH   = 68.0
		qrSize  = 45.0
		marginX = 10.5
		marginY = 12.0
	)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(company+" badges", true)
	pdf.SetAutoPageBreak(false, 0)

	for i, p := range persons {
		slot := i % (cols * rows)
		if slot == 0 {
			pdf.AddPage()
		}

		x := marginX + float64(slot%cols)*cellW
		y := marginY + float64(slot/cols)*cellH

		png, err := QRCode(p.ID)
		if err != nil {
			return errors.Wrapf(err, "badge for %s", p.ID)
		}

		name := fmt.Sprintf("qr-%d", i)
		pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))

		pdf.SetDrawColor(180, 180, 180)
		pdf.Rect(x, y, cellW-2, cellH-2, "D")
		pdf.ImageOptions(name, x+(cellW-2-qrSize)/2, y+3, qrSize, qrSize, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

		pdf.SetXY(x, y+qrSize+5)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(cellW-2, 5, tr(p.FullName()), "", 2, "C", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(cellW-2, 5, tr(p.ID), "", 2, "C", false, 0, "")
		pdf.SetFont("Arial", "I", 7)
		pdf.CellFormat(cellW-2, 4, tr(company), "", 0, "C", false, 0, "")
	}

	if len(persons) == 0 {
		pdf.AddPage()
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(0, 10, "No active persons", "", 1, "C", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "writing badge pdf")
	}
	return nil
}

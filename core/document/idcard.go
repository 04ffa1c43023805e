package document

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/markazhub/markaz/core"
	"github.com/markazhub/markaz/core/student"
)

// IDCardRenderer renders a CR80-sized student ID card with a QR code
// encoding the student identifier (what the attendance and munaqasyah
// scanners read back).
type IDCardRenderer struct {
	conf *core.Config
}

var _ Renderer = (*IDCardRenderer)(nil)

func NewIDCardRenderer(conf *core.Config) *IDCardRenderer {
	return &IDCardRenderer{conf: conf}
}

func (r *IDCardRenderer) Render(std student.Student) (Document, error) {
	qr, err := qrcode.Encode(std.ID, qrcode.Medium, 256)
	if err != nil {
		return Document{}, err
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: 85.6, Ht: 54},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, r.conf.AppName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(0, 3, "Student Identity Card", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(48, 5, std.Name, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(48, 4, "NIS: "+std.NIS, "", 1, "L", false, 0, "")
	pdf.CellFormat(48, 4, "Status: "+std.Status, "", 1, "L", false, 0, "")

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr-"+std.ID, opts, bytes.NewReader(qr))
	pdf.ImageOptions("qr-"+std.ID, 58, 22, 24, 24, false, opts, 0, "")

	var buff bytes.Buffer
	if err := pdf.Output(&buff); err != nil {
		return Document{}, err
	}
	return Document{
		Filename: fmt.Sprintf("id-card-%s.pdf", std.NIS),
		Data:     buff.Bytes(),
	}, nil
}

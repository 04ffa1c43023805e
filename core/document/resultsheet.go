package document

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/markazhub/markaz/core"
	"github.com/markazhub/markaz/core/scoring"
	"github.com/markazhub/markaz/core/student"
)

// ResultSheetRenderer renders a student's munaqasyah result sheet.
// Students without a scoring session render with empty score rows rather
// than failing the whole bulk job.
type ResultSheetRenderer struct {
	conf   *core.Config
	scores scoring.Repository
}

var _ Renderer = (*ResultSheetRenderer)(nil)

func NewResultSheetRenderer(conf *core.Config, scores scoring.Repository) *ResultSheetRenderer {
	return &ResultSheetRenderer{conf: conf, scores: scores}
}

func (r *ResultSheetRenderer) Render(std student.Student) (Document, error) {
	sess, err := r.scores.GetSessionByStudent(context.Background(), std.ID)
	if err != nil && errors.Cause(err) != scoring.ErrNotFound {
		return Document{}, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, r.conf.AppName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Munaqasyah Result Sheet", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, "Name: "+std.Name, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "NIS: "+std.NIS, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(90, 7, "Category", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Score", "1", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, cat := range scoring.AllCategories {
		val := ""
		if sc, ok := sess.PerCategory[cat]; ok {
			val = strconv.Itoa(sc.Score)
		}
		pdf.CellFormat(90, 7, cat, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, val, "1", 1, "C", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(90, 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, strconv.Itoa(sess.Total()), "1", 1, "C", false, 0, "")

	var buff bytes.Buffer
	if err := pdf.Output(&buff); err != nil {
		return Document{}, err
	}
	return Document{
		Filename: fmt.Sprintf("munaqasyah-%s.pdf", std.NIS),
		Data:     buff.Bytes(),
	}, nil
}

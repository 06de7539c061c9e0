// Package export renders an assembled ETP as PDF and ships it to storage.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/nikhilbhutani/etpassistant/internal/document"
)

var ErrMinimumData = errors.New("Preencha pelo menos o objeto, a justificativa e a modalidade")

func init() {
	api.DisableConfigDir()
}

// Artifact is a rendered and verified PDF.
type Artifact struct {
	FileName string
	Data     []byte
	Pages    int
	Location string
}

type Renderer struct {
	margin float64
}

func NewRenderer() *Renderer {
	return &Renderer{margin: 20}
}

// Export assembles the form, renders it and checks the result parses as a
// PDF. Forms without objeto, justificativa and modalidade are refused.
func (r *Renderer) Export(f document.Form, now time.Time) (*Artifact, error) {
	if !f.HasMinimumData() {
		return nil, ErrMinimumData
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, document.Assemble(f, now)); err != nil {
		return nil, err
	}

	pages, err := Verify(buf.Bytes())
	if err != nil {
		return nil, err
	}

	return &Artifact{
		FileName: document.FileName(f, now),
		Data:     buf.Bytes(),
		Pages:    pages,
	}, nil
}

// Verify validates data with pdfcpu and returns its page count.
func Verify(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return 0, fmt.Errorf("validate pdf: %w", err)
	}
	pages, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return pages, nil
}

// Render writes doc as an A4 portrait PDF.
func (r *Renderer) Render(w io.Writer, doc document.Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(r.margin, r.margin, r.margin)
	pdf.SetAutoPageBreak(true, r.margin+10)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("etpassistant", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-r.margin - 5)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		for _, line := range doc.Footer {
			pdf.CellFormat(0, 4, tr(line), "", 1, "C", false, 0, "")
		}
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(doc.Subtitle), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	for _, s := range doc.Sections {
		r.section(pdf, tr, s, "• ")
	}
	r.section(pdf, tr, doc.Responsible, "")

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	if len(doc.Signature) > 0 {
		pdf.CellFormat(0, 6, tr(doc.Signature[0]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(14)
	x := pdf.GetX()
	y := pdf.GetY()
	pdf.Line(x, y, x+80, y)
	pdf.Ln(2)
	for _, line := range doc.Signature[min(1, len(doc.Signature)):] {
		pdf.CellFormat(80, 6, tr(line), "", 1, "C", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func (r *Renderer) section(pdf *fpdf.Fpdf, tr func(string) string, s document.Section, bullet string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr(s.Label()), "", 1, "L", false, 0, "")

	if s.Body != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(s.Body), "", "J", false)
	}
	for _, item := range s.Bullets {
		if bullet == "" {
			pdf.SetFont("Helvetica", "I", 11)
		} else {
			pdf.SetFont("Helvetica", "", 11)
		}
		pdf.MultiCell(0, 6, tr(bullet+item), "", "L", false)
	}
	pdf.Ln(4)
}

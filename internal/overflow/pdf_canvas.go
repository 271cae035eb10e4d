package overflow

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// PDFCanvas draws annex pages with fpdf using the core Helvetica fonts
type PDFCanvas struct {
	pdf       *fpdf.Fpdf
	translate func(string) string
}

// NewPDFCanvas creates an empty document
func NewPDFCanvas() *PDFCanvas {
	pdf := fpdf.New("L", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreator("posesion-efectiva", true)
	return &PDFCanvas{
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// NewPage implements Canvas
func (c *PDFCanvas) NewPage(width, height float64) {
	c.pdf.AddPageFormat("P", fpdf.SizeType{Wd: width, Ht: height})
}

// DrawText implements Canvas
func (c *PDFCanvas) DrawText(text string, x, y, size float64, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	c.pdf.SetFont("Helvetica", style, size)
	c.pdf.SetTextColor(0, 0, 0)
	c.pdf.Text(x, y, c.translate(text))
}

// FillRect implements Canvas
func (c *PDFCanvas) FillRect(x, y, width, height float64, gray int) {
	c.pdf.SetFillColor(gray, gray, gray)
	c.pdf.Rect(x, y, width, height, "F")
}

// Bytes serializes the document
func (c *PDFCanvas) Bytes() ([]byte, error) {
	if err := c.pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to draw annex: %w", err)
	}
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize annex: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderAnnex lays the annex out on a fresh PDF canvas and serializes it.
// It returns nil bytes when nothing overflows.
func RenderAnnex(doc AnnexDocument) ([]byte, int, error) {
	canvas := NewPDFCanvas()
	pages := LayoutAnnex(canvas, doc)
	if pages == 0 {
		return nil, 0, nil
	}
	data, err := canvas.Bytes()
	if err != nil {
		return nil, 0, err
	}
	return data, pages, nil
}

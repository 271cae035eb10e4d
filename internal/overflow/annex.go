package overflow

import (
	"fmt"

	"github.com/a3tai/posesion-efectiva/internal/format"
	"github.com/a3tai/posesion-efectiva/internal/mapper"
)

// Canvas is the drawing surface annex pages are laid out on. Coordinates are
// in points with the origin at the top-left corner; y is the text baseline.
type Canvas interface {
	NewPage(width, height float64)
	DrawText(text string, x, y, size float64, bold bool)
	FillRect(x, y, width, height float64, gray int)
}

// Page geometry of the annex: landscape A4
const (
	PageWidth    = 842.0
	PageHeight   = 595.0
	LeftMargin   = 40.0
	TopMargin    = 60.0
	BottomMargin = 50.0
	LineHeight   = 14.0
	Indent       = 15.0
	BandHeight   = 36.0

	TitleSize = 13.0
	HeadSize  = 10.0
	TextSize  = 8.0

	// MaxLineLength bounds the characters drawn per line
	MaxLineLength = 140
)

// headerBlock is the vertical space reserved by a category heading
const headerBlock = 2 * LineHeight

// AnnexDocument is what an annex lists
type AnnexDocument struct {
	// Subject names the case on every page, usually the decedent
	Subject string
	Groups  mapper.OverflowSet
}

// annexLayout tracks the cursor while drawing
type annexLayout struct {
	canvas Canvas
	doc    AnnexDocument
	pages  int
	y      float64
}

// LayoutAnnex draws the annex on the canvas and returns the number of pages
// used. Nothing is drawn for an empty overflow set.
func LayoutAnnex(canvas Canvas, doc AnnexDocument) int {
	if doc.Groups.Empty() {
		return 0
	}

	l := &annexLayout{canvas: canvas, doc: doc}
	l.newPage()

	for _, g := range doc.Groups {
		l.ensure(headerBlock)
		canvas.DrawText(Truncate(Heading(g), MaxLineLength), LeftMargin, l.y, HeadSize, true)
		l.y += headerBlock

		for _, e := range g.Entries {
			l.ensure(LineHeight)
			canvas.DrawText(Truncate(Line(e), MaxLineLength), LeftMargin+Indent, l.y, TextSize, false)
			l.y += LineHeight
		}

		l.ensure(LineHeight)
		subtotal := fmt.Sprintf("Subtotal anexo %s: $%s", g.Category.Title(), format.Amount(Subtotal(g)))
		canvas.DrawText(Truncate(subtotal, MaxLineLength), LeftMargin+Indent, l.y, TextSize, true)
		l.y += headerBlock
	}

	return l.pages
}

// ensure starts a new page when need points do not fit above the bottom margin
func (l *annexLayout) ensure(need float64) {
	if l.y+need > PageHeight-BottomMargin {
		l.newPage()
	}
}

func (l *annexLayout) newPage() {
	l.pages++
	l.canvas.NewPage(PageWidth, PageHeight)
	l.canvas.FillRect(0, 0, PageWidth, BandHeight, 225)

	title := "ANEXO DE INVENTARIO - POSESIÓN EFECTIVA"
	if l.doc.Subject != "" {
		title += " - " + l.doc.Subject
	}
	l.canvas.DrawText(Truncate(title, MaxLineLength), LeftMargin, 24, TitleSize, true)
	l.canvas.DrawText(fmt.Sprintf("Hoja anexa %d", l.pages), PageWidth-LeftMargin-70, 24, TextSize, false)

	l.y = TopMargin + LineHeight
}

package overflow

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/posesion-efectiva/internal/formschema"
	"github.com/a3tai/posesion-efectiva/internal/mapper"
	"github.com/a3tai/posesion-efectiva/internal/model"
)

type drawnText struct {
	page int
	text string
	x, y float64
	bold bool
}

// recordingCanvas keeps every draw call for inspection
type recordingCanvas struct {
	pages int
	texts []drawnText
	rects int
}

func (c *recordingCanvas) NewPage(width, height float64) {
	c.pages++
}

func (c *recordingCanvas) DrawText(text string, x, y, size float64, bold bool) {
	c.texts = append(c.texts, drawnText{page: c.pages, text: text, x: x, y: y, bold: bold})
}

func (c *recordingCanvas) FillRect(x, y, width, height float64, gray int) {
	c.rects++
}

func (c *recordingCanvas) bodyTexts() []drawnText {
	var out []drawnText
	for _, t := range c.texts {
		if t.y > BandHeight {
			out = append(out, t)
		}
	}
	return out
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{in: "replicate", want: Replicate},
		{in: " ANNEX ", want: Annex},
		{in: "anexo", want: Annex},
		{in: "both", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, must(ParseStrategy(got.String())))
		})
	}
}

func must(s Strategy, err error) Strategy {
	if err != nil {
		panic(err)
	}
	return s
}

func TestPlanReplication(t *testing.T) {
	layout := formschema.Default().Layout

	plan := PlanReplication(1, layout)
	assert.True(t, plan.Empty())
	assert.Equal(t, 0, plan.Copies)

	plan = PlanReplication(4, layout)
	assert.Equal(t, 2, plan.Page)
	assert.Equal(t, 3, plan.Copies)

	assert.True(t, PlanReplication(0, layout).Empty())

	plan = PlanReplication(math.MaxInt32, layout)
	assert.Equal(t, layout.MaxInventorySheets-1, plan.Copies)
}

func realEstateOverflow(n int) mapper.OverflowSet {
	in := &model.CaseInput{}
	for i := range n {
		in.RealEstate = append(in.RealEstate, &model.RealEstate{
			TaxRoll:   model.Text(fmt.Sprintf("200-%d", i+1)),
			Commune:   "Talca",
			Valuation: "1000000",
			Exemption: "50000",
		})
	}
	return mapper.New(formschema.Default()).Map(in).Overflow
}

func TestLayoutAnnex_Empty(t *testing.T) {
	c := &recordingCanvas{}
	assert.Equal(t, 0, LayoutAnnex(c, AnnexDocument{}))
	assert.Equal(t, 0, c.pages)
	assert.Empty(t, c.texts)
}

func TestLayoutAnnex_SixRealEstateEntries(t *testing.T) {
	c := &recordingCanvas{}
	pages := LayoutAnnex(c, AnnexDocument{Subject: "Juan Pérez", Groups: realEstateOverflow(6)})

	assert.Equal(t, 1, pages)
	assert.Equal(t, 1, c.rects)

	body := c.bodyTexts()
	require.Len(t, body, 4)
	assert.True(t, body[0].bold)
	assert.Equal(t, "BIENES RAÍCES (continuación desde N° 5)", body[0].text)
	assert.Equal(t, LeftMargin, body[0].x)

	assert.Equal(t, "N° 5 | Rol SII 200-5 | Comuna Talca | P | Valor $1.000.000 | Exención $50.000", body[1].text)
	assert.True(t, strings.HasPrefix(body[2].text, "N° 6 | Rol SII 200-6"))
	assert.Equal(t, LeftMargin+Indent, body[1].x)
	assert.False(t, body[1].bold)
	assert.Equal(t, "Subtotal anexo Bienes Raíces: $2.000.000", body[3].text)
}

func TestLayoutAnnex_Paginates(t *testing.T) {
	c := &recordingCanvas{}
	pages := LayoutAnnex(c, AnnexDocument{Groups: realEstateOverflow(84)})

	// 31 lines fit under the heading of the first page, 33 on the next ones
	assert.Equal(t, 3, pages)
	assert.Equal(t, pages, c.pages)
	assert.Equal(t, pages, c.rects)

	for _, d := range c.texts {
		assert.LessOrEqual(t, d.y, PageHeight-BottomMargin, d.text)
		assert.GreaterOrEqual(t, d.y, 0.0)
	}

	lines := 0
	for _, d := range c.bodyTexts() {
		if strings.HasPrefix(d.text, "N° ") {
			lines++
		}
	}
	assert.Equal(t, 80, lines)
}

func TestLayoutAnnex_CategoryOrder(t *testing.T) {
	in := &model.CaseInput{}
	for range 5 {
		in.Liabilities = append(in.Liabilities, &model.Liability{Description: "Deuda", Creditor: "Banco", Valuation: "10"})
		in.Vehicles = append(in.Vehicles, &model.Vehicle{Plate: "AB1234", Make: "Fiat", Model: "Uno", Valuation: "5"})
		in.OtherAssets = append(in.OtherAssets, &model.Asset{Description: "Cuadro", Valuation: "1"})
	}
	groups := mapper.New(formschema.Default()).Map(in).Overflow

	c := &recordingCanvas{}
	LayoutAnnex(c, AnnexDocument{Groups: groups})

	var headings []string
	for _, d := range c.bodyTexts() {
		if d.bold && !strings.HasPrefix(d.text, "Subtotal") {
			headings = append(headings, d.text)
		}
	}
	assert.Equal(t, []string{
		"VEHÍCULOS (continuación desde N° 5)",
		"OTROS ACTIVOS (continuación desde N° 5)",
		"PASIVOS (continuación desde N° 5)",
	}, headings)
}

func TestLine(t *testing.T) {
	tests := []struct {
		name  string
		entry mapper.OverflowEntry
		want  string
	}{
		{
			name: "vehicle",
			entry: mapper.OverflowEntry{Position: 4, Entry: &model.Vehicle{
				Plate: "BBCL-22", Kind: "Automóvil", Make: "Toyota", Model: "Yaris", Year: "2019", PS: "S", Valuation: "6500000",
			}},
			want: "N° 5 | PPU BBCL-22 | Automóvil | Toyota Yaris 2019 | S | Valor $6.500.000",
		},
		{
			name:  "asset",
			entry: mapper.OverflowEntry{Position: 11, Entry: &model.Asset{Description: "Refrigerador", Valuation: "abc"}},
			want:  "N° 12 | Refrigerador | P | Valor $0",
		},
		{
			name: "liability",
			entry: mapper.OverflowEntry{Position: 6, Entry: &model.Liability{
				Description: "Crédito de consumo", Creditor: "Banco Estado", DocumentNumber: "778", Valuation: "1200000",
			}},
			want: "N° 7 | Crédito de consumo | Acreedor Banco Estado | Documento 778 | Valor $1.200.000",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Line(tt.entry))
		})
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("á", MaxLineLength+20)
	got := Truncate(long, MaxLineLength)
	assert.Equal(t, MaxLineLength, len([]rune(got)))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestLayoutAnnex_TruncatesLongLines(t *testing.T) {
	in := &model.CaseInput{}
	for range 5 {
		in.OtherMovables = append(in.OtherMovables, &model.Asset{Description: model.Text(strings.Repeat("x", 500))})
	}
	c := &recordingCanvas{}
	LayoutAnnex(c, AnnexDocument{Groups: mapper.New(formschema.Default()).Map(in).Overflow})
	for _, d := range c.texts {
		assert.LessOrEqual(t, len([]rune(d.text)), MaxLineLength)
	}
}

func TestRenderAnnex(t *testing.T) {
	data, pages, err := RenderAnnex(AnnexDocument{Subject: "María Ñuñez", Groups: realEstateOverflow(84)})
	require.NoError(t, err)
	assert.Equal(t, 3, pages)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	count, err := api.PageCount(bytes.NewReader(data), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	data, pages, err = RenderAnnex(AnnexDocument{})
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Equal(t, 0, pages)
}

package inventory

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/a3tai/posesion-efectiva/internal/format"
	"github.com/a3tai/posesion-efectiva/internal/mapper"
	"github.com/a3tai/posesion-efectiva/internal/model"
)

// Sheet names of the workbook
const (
	InventorySheet = "Inventario"
	TotalsSheet    = "Totales"
)

// ContentType is the MIME type of the workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var inventoryHeader = []interface{}{"Categoría", "N°", "Detalle", "P/S", "Valor", "Exención", "Ubicación"}

// Exporter builds inventory workbooks
type Exporter struct {
	mapper *mapper.Mapper
}

// NewExporter creates an exporter over a field mapper
func NewExporter(m *mapper.Mapper) *Exporter {
	return &Exporter{mapper: m}
}

// Workbook builds the workbook of one case. The caller closes it.
func (e *Exporter) Workbook(in *model.CaseInput) (*excelize.File, error) {
	if in == nil {
		in = &model.CaseInput{}
	}
	result := e.mapper.Map(in)
	rows := Rows(in, result, e.mapper.Schema().Presumption.Label)

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), InventorySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(TotalsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := writeInventory(f, st, rows); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeTotals(f, st, in, result); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Write streams the workbook of one case to w
func (e *Exporter) Write(w io.Writer, in *model.CaseInput) error {
	f, err := e.Workbook(in)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Filename names an export after the decedent's first surname and the date
func Filename(in *model.CaseInput, now time.Time) string {
	var surname string
	if in != nil {
		surname = string(in.Decedent.FirstSurname)
	}
	return fmt.Sprintf("Inventario_%s_%s.xlsx", format.FilenamePart(surname, "posesion"), now.UTC().Format("2006-01-02"))
}

type styles struct {
	header int
	amount int
	total  int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9D9D9"}, Pattern: 1},
	})
	if err != nil {
		return s, fmt.Errorf("failed to create header style: %w", err)
	}
	// #,##0
	s.amount, err = f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return s, fmt.Errorf("failed to create amount style: %w", err)
	}
	s.total, err = f.NewStyle(&excelize.Style{NumFmt: 3, Font: &excelize.Font{Bold: true}})
	if err != nil {
		return s, fmt.Errorf("failed to create total style: %w", err)
	}
	return s, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func writeInventory(f *excelize.File, st styles, rows []Row) error {
	sheet := InventorySheet
	if err := f.SetSheetRow(sheet, "A1", &inventoryHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", cell(len(inventoryHeader), 1), st.header); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range rows {
		line := i + 2
		var number interface{}
		if r.Number > 0 {
			number = r.Number
		}
		values := []interface{}{r.Category.Title(), number, r.Details, r.Ownership, r.Value, r.Exemption, string(r.Placement)}
		if err := f.SetSheetRow(sheet, cell(1, line), &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", line, err)
		}
	}
	if len(rows) > 0 {
		if err := f.SetCellStyle(sheet, "E2", cell(6, len(rows)+1), st.amount); err != nil {
			return fmt.Errorf("failed to style amounts: %w", err)
		}
	}

	widths := map[string]float64{"A": 38, "B": 6, "C": 90, "D": 6, "E": 16, "F": 16, "G": 26}
	for col, width := range widths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}

func writeTotals(f *excelize.File, st styles, in *model.CaseInput, result *mapper.Result) error {
	sheet := TotalsSheet
	t := result.Totals

	rut := ""
	if in.Decedent.NationalID != "" {
		rut = format.NationalIDDisplay(string(in.Decedent.NationalID))
	}
	lines := [][]interface{}{
		{"Causante", in.Decedent.FullName()},
		{"RUT", rut},
		{},
		{"Categoría", "Total"},
	}
	for _, c := range mapper.Categories {
		lines = append(lines, []interface{}{c.Title(), t.Of(c)})
	}
	firstTotal := len(lines)
	lines = append(lines,
		[]interface{}{"Total activos", t.Assets()},
		[]interface{}{"Masa hereditaria", t.NetEstate()},
		[]interface{}{"Entradas en anexo", result.Overflow.Count()},
	)

	for i, values := range lines {
		if len(values) == 0 {
			continue
		}
		if err := f.SetSheetRow(sheet, cell(1, i+1), &values); err != nil {
			return fmt.Errorf("failed to write totals row %d: %w", i+1, err)
		}
	}

	header := 4
	if err := f.SetCellStyle(sheet, cell(1, header), cell(2, header), st.header); err != nil {
		return fmt.Errorf("failed to style totals header: %w", err)
	}
	if err := f.SetCellStyle(sheet, cell(2, header+1), cell(2, firstTotal), st.amount); err != nil {
		return fmt.Errorf("failed to style totals: %w", err)
	}
	if err := f.SetCellStyle(sheet, cell(2, firstTotal+1), cell(2, firstTotal+2), st.total); err != nil {
		return fmt.Errorf("failed to style grand totals: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", "A", 42); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return f.SetColWidth(sheet, "B", "B", 40)
}

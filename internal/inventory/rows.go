// Package inventory exports every declared inventory entry, with its place
// on the printed form, and the category totals as an XLSX workbook.
package inventory

import (
	"github.com/a3tai/posesion-efectiva/internal/mapper"
	"github.com/a3tai/posesion-efectiva/internal/model"
	"github.com/a3tai/posesion-efectiva/internal/overflow"
)

// Placement says where an entry ends up in the generated document
type Placement string

const (
	OnForm   Placement = "Formulario"
	InAnnex  Placement = "Anexo"
	Excluded Placement = "Excluido (presunción 20%)"
)

// Row is one line of the inventory sheet
type Row struct {
	Category mapper.Category
	// Number is the one-based list position, 0 for the synthesized
	// presumption row
	Number    int
	Details   string
	Ownership string
	Value     int64
	Exemption int64
	Placement Placement
}

type slotKey struct {
	category mapper.Category
	position int
}

// Rows lists every entry of every bounded category in form order. Entries
// beyond slot capacity are placed in the annex; the household list is
// excluded under the presumption and replaced by the synthesized row.
func Rows(in *model.CaseInput, result *mapper.Result, presumptionLabel string) []Row {
	if in == nil {
		in = &model.CaseInput{}
	}
	annexed := map[slotKey]bool{}
	for _, g := range result.Overflow {
		for _, e := range g.Entries {
			annexed[slotKey{g.Category, e.Position}] = true
		}
	}

	var rows []Row
	for _, c := range mapper.Categories {
		if c == mapper.CategoryHouseholdGoods && bool(in.Presumption) {
			rows = append(rows, Row{
				Category:  c,
				Details:   presumptionLabel,
				Ownership: "P",
				Value:     result.Totals.HouseholdGoods,
				Placement: OnForm,
			})
		}

		for i, e := range Entries(in, c) {
			if e == nil {
				continue
			}
			row := Row{
				Category:  c,
				Number:    i + 1,
				Details:   overflow.Details(e),
				Ownership: e.Ownership(),
				Value:     e.Amount(),
				Placement: OnForm,
			}
			if re, ok := e.(*model.RealEstate); ok {
				row.Exemption = re.ExemptionAmount()
			}
			if _, ok := e.(*model.Liability); ok {
				row.Ownership = ""
			}
			switch {
			case c == mapper.CategoryHouseholdGoods && bool(in.Presumption):
				row.Placement = Excluded
			case annexed[slotKey{c, i}]:
				row.Placement = InAnnex
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// Entries returns the list of one category. Absent entries stay in place as
// nil so positions are preserved.
func Entries(in *model.CaseInput, c mapper.Category) []model.Entry {
	switch c {
	case mapper.CategoryRealEstate:
		return entries(in.RealEstate)
	case mapper.CategoryVehicles:
		return entries(in.Vehicles)
	case mapper.CategoryHouseholdGoods:
		return entries(in.HouseholdGoods)
	case mapper.CategoryOtherMovables:
		return entries(in.OtherMovables)
	case mapper.CategoryOtherAssets:
		return entries(in.OtherAssets)
	case mapper.CategoryLiabilities:
		return entries(in.Liabilities)
	default:
		return nil
	}
}

func entries[E interface {
	comparable
	model.Entry
}](list []E) []model.Entry {
	out := make([]model.Entry, len(list))
	var absent E
	for i, e := range list {
		if e != absent {
			out[i] = e
		}
	}
	return out
}

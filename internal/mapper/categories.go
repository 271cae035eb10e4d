package mapper

import (
	"strconv"

	"github.com/a3tai/posesion-efectiva/internal/format"
	"github.com/a3tai/posesion-efectiva/internal/formschema"
	"github.com/a3tai/posesion-efectiva/internal/model"
)

// sum adds the valuation of every entry, including those past the slots
func sum[E model.Entry](list []E) int64 {
	var total int64
	for _, e := range list {
		total += e.Amount()
	}
	return total
}

// slotted returns how many entries of a list get a slot on the form
func slotted(n, capacity int) int {
	return min(n, capacity)
}

func (m *Mapper) realEstate(list []*model.RealEstate) (section, int64) {
	f := m.schema.RealEstate
	s := newSection()
	for i := range slotted(len(list), m.schema.Layout.CategorySlots) {
		e := list[i]
		if e == nil {
			continue
		}
		idx := strconv.Itoa(i)
		s.fields[formschema.Indexed(f.TaxRoll, idx)] = string(e.TaxRoll)
		s.fields[formschema.Indexed(f.Kind, idx)] = string(e.Kind)
		s.fields[formschema.Indexed(f.Commune, idx)] = string(e.Commune)
		s.fields[formschema.Indexed(f.AcquisitionDate, idx)] = format.Date(string(e.AcquisitionDate))
		s.fields[formschema.Indexed(f.Folio, idx)] = string(e.Folio)
		s.fields[formschema.Indexed(f.RegistryNumber, idx)] = string(e.RegistryNumber)
		s.fields[formschema.Indexed(f.RegistryYear, idx)] = string(e.RegistryYear)
		s.fields[formschema.Indexed(f.Registrar, idx)] = string(e.Registrar)
		s.fields[formschema.Indexed(f.Ownership, idx)] = e.Ownership()
		s.fields[formschema.Indexed(f.Value, idx)] = format.Amount(e.Amount())
		s.fields[formschema.Indexed(f.Exemption, idx)] = format.Amount(e.ExemptionAmount())
	}
	return s, sum(list)
}

func (m *Mapper) vehicles(list []*model.Vehicle) (section, int64) {
	f := m.schema.Vehicles
	s := newSection()
	for i := range slotted(len(list), m.schema.Layout.CategorySlots) {
		e := list[i]
		if e == nil {
			continue
		}
		idx := strconv.Itoa(i)
		s.fields[formschema.Indexed(f.Plate, idx)] = string(e.Plate)
		s.fields[formschema.Indexed(f.TaxCode, idx)] = string(e.TaxCode)
		s.fields[formschema.Indexed(f.Kind, idx)] = string(e.Kind)
		s.fields[formschema.Indexed(f.Make, idx)] = string(e.Make)
		s.fields[formschema.Indexed(f.Model, idx)] = string(e.Model)
		s.fields[formschema.Indexed(f.Year, idx)] = string(e.Year)
		s.fields[formschema.Indexed(f.Chassis, idx)] = string(e.ChassisID)
		s.fields[formschema.Indexed(f.Ownership, idx)] = e.Ownership()
		s.fields[formschema.Indexed(f.Value, idx)] = format.Amount(e.Amount())
	}
	return s, sum(list)
}

// household either synthesizes the single presumption row, ignoring the
// list, or fills the household table through its fixed slot sequence.
func (m *Mapper) household(in *model.CaseInput) (section, int64) {
	f := m.schema.Household
	s := newSection()

	if in.Presumption {
		var base int64
		if len(in.RealEstate) > 0 {
			base = in.RealEstate[0].Amount()
		}
		total := PresumptionAmount(base, m.schema.Presumption.Rate)
		s.fields[formschema.Indexed(f.Description, "0")] = m.schema.Presumption.Label
		s.fields[formschema.Indexed(f.Ownership, "0")] = m.schema.Presumption.Ownership
		s.fields[formschema.Indexed(f.Value, "0")] = format.Amount(total)
		return s, total
	}

	slots := m.schema.Layout.HouseholdSlots
	list := in.HouseholdGoods
	for i := range slotted(len(list), len(slots)) {
		e := list[i]
		if e == nil {
			continue
		}
		idx := strconv.Itoa(slots[i])
		s.fields[formschema.Indexed(f.Description, idx)] = string(e.Description)
		s.fields[formschema.Indexed(f.Ownership, idx)] = e.Ownership()
		s.fields[formschema.Indexed(f.Value, idx)] = format.Amount(e.Amount())
	}
	return s, sum(list)
}

// sharedAssets fills a category whose description and P/S are single-valued
// on the form: only the first entry describes, every slotted entry has its
// own numbered value cell.
func (m *Mapper) sharedAssets(f formschema.SharedAsset, list []*model.Asset) (section, int64) {
	s := newSection()
	for i := range slotted(len(list), m.schema.Layout.CategorySlots) {
		e := list[i]
		if e == nil {
			continue
		}
		if i == 0 {
			s.fields[f.Description] = string(e.Description)
			s.fields[f.Ownership] = e.Ownership()
		}
		s.fields[formschema.Numbered(f.Value, i+1)] = format.Amount(e.Amount())
	}
	return s, sum(list)
}

func (m *Mapper) liabilities(list []*model.Liability) (section, int64) {
	f := m.schema.Liabilities
	s := newSection()
	for i := range slotted(len(list), m.schema.Layout.CategorySlots) {
		e := list[i]
		if e == nil {
			continue
		}
		if i == 0 {
			s.fields[f.Description] = string(e.Description)
			s.fields[f.Creditor] = string(e.Creditor)
			s.fields[f.DocumentNumber] = string(e.DocumentNumber)
		}
		s.fields[formschema.Numbered(f.Value, i+1)] = format.Amount(e.Amount())
	}
	return s, sum(list)
}

// overflow collects, per category, the entries past the slot capacity. The
// household list has no overflow under the presumption since it is ignored.
func (m *Mapper) overflow(in *model.CaseInput) OverflowSet {
	slots := m.schema.Layout.CategorySlots
	groups := []OverflowGroup{
		collect(CategoryRealEstate, in.RealEstate, slots),
		collect(CategoryVehicles, in.Vehicles, slots),
	}
	if !in.Presumption {
		groups = append(groups, collect(CategoryHouseholdGoods, in.HouseholdGoods, len(m.schema.Layout.HouseholdSlots)))
	}
	groups = append(groups,
		collect(CategoryOtherMovables, in.OtherMovables, slots),
		collect(CategoryOtherAssets, in.OtherAssets, slots),
		collect(CategoryLiabilities, in.Liabilities, slots),
	)

	var set OverflowSet
	for _, g := range groups {
		if len(g.Entries) > 0 {
			set = append(set, g)
		}
	}
	return set
}

func collect[E interface {
	comparable
	model.Entry
}](c Category, list []E, capacity int) OverflowGroup {
	g := OverflowGroup{Category: c, Capacity: capacity}
	var absent E
	for i := capacity; i < len(list); i++ {
		if list[i] == absent {
			continue
		}
		g.Entries = append(g.Entries, OverflowEntry{Position: i, Entry: list[i]})
	}
	return g
}

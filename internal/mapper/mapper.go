// Package mapper turns a CaseInput into the flat field and checkbox maps of
// the printed form, the per-category totals and the entries that do not fit
// the form's fixed slots.
//
// Every step is a pure function of the input; the steps never read each
// other's output except for the final totals.
package mapper

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/a3tai/posesion-efectiva/internal/format"
	"github.com/a3tai/posesion-efectiva/internal/formschema"
	"github.com/a3tai/posesion-efectiva/internal/model"
)

// Tax declaration states accepted in declaracion_impuesto
const (
	TaxExempt      = "exentas"
	TaxSomeTaxable = "afectas_algunas"
	TaxAllTaxable  = "afectas_todas"
)

// Nationality codes selecting the RUN or RUT checkbox
const (
	NationalityChilean = "1"
	NationalityForeign = "2"
)

// Mapper maps cases against one schema version
type Mapper struct {
	schema *formschema.Schema
}

// New creates a mapper for the given schema
func New(schema *formschema.Schema) *Mapper {
	return &Mapper{schema: schema}
}

// Schema returns the schema the mapper writes names from
func (m *Mapper) Schema() *formschema.Schema {
	return m.schema
}

// Map derives the field map, checkbox map, totals and overflow of a case.
// It never fails: malformed values degrade to empty strings or zero.
func (m *Mapper) Map(in *model.CaseInput) *Result {
	if in == nil {
		in = &model.CaseInput{}
	}
	res := &Result{Fields: FieldMap{}, Checkboxes: CheckboxMap{}}

	res.merge(m.decedent(in.Decedent))
	res.merge(m.deathRecord(in.DeathRecord))
	res.merge(m.domicile(in.DecedentDomicile))
	res.merge(m.regime(in))
	res.merge(m.applicant(in.Applicant))
	res.merge(m.representative(in.Representative))
	res.merge(m.heirs(in.Heirs))
	res.merge(m.inventory(in))
	res.merge(m.taxDeclaration(in.TaxDeclaration))

	realEstate, realEstateTotal := m.realEstate(in.RealEstate)
	vehicles, vehiclesTotal := m.vehicles(in.Vehicles)
	household, householdTotal := m.household(in)
	otherMovables, otherMovablesTotal := m.sharedAssets(m.schema.OtherMovables, in.OtherMovables)
	otherAssets, otherAssetsTotal := m.sharedAssets(m.schema.OtherAssets, in.OtherAssets)
	liabilities, liabilitiesTotal := m.liabilities(in.Liabilities)
	for _, s := range []section{realEstate, vehicles, household, otherMovables, otherAssets, liabilities} {
		res.merge(s)
	}

	res.Totals = Totals{
		RealEstate:     realEstateTotal,
		Vehicles:       vehiclesTotal,
		HouseholdGoods: householdTotal,
		OtherMovables:  otherMovablesTotal,
		OtherAssets:    otherAssetsTotal,
		Liabilities:    liabilitiesTotal,
	}
	res.merge(m.totals(in, res.Totals))
	res.Overflow = m.overflow(in)

	return res
}

// PresumptionAmount is the household-goods valuation presumed from the first
// real-estate asset, rounded to the nearest integer.
func PresumptionAmount(firstRealEstate int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(firstRealEstate).Mul(rate).Round(0).IntPart()
}

// HeirSuffix returns the field-index suffix of the heir at position i:
// "0".."7" on the first block, "8.0".."8.11" on the second. ok is false past
// the second block.
func HeirSuffix(i int, layout formschema.Layout) (suffix string, ok bool) {
	switch {
	case i < 0:
		return "", false
	case i < layout.HeirsFirstBlock:
		return strconv.Itoa(i), true
	case i < layout.HeirsFirstBlock+layout.HeirsSecondBlock:
		return layout.HeirsSecondPrefix + "." + strconv.Itoa(i-layout.HeirsFirstBlock), true
	default:
		return "", false
	}
}

func (m *Mapper) decedent(p model.Person) section {
	f := m.schema.Decedent
	s := newSection()
	body, check := format.NationalID(string(p.NationalID))
	s.fields[f.RUT] = body
	s.fields[f.CheckDigit] = check
	s.fields[f.FirstNames] = string(p.FirstNames)
	s.fields[f.FirstSurname] = string(p.FirstSurname)
	s.fields[f.SecondSurname] = string(p.SecondSurname)

	if p.BirthDate != "" {
		s.fields[f.BirthDay], s.fields[f.BirthMonth], s.fields[f.BirthYear] = format.DateParts(string(p.BirthDate))
	}
	if p.DeathDate != "" {
		s.fields[f.DeathDay], s.fields[f.DeathMonth], s.fields[f.DeathYear] = format.DateParts(string(p.DeathDate))
	}

	s.fields[f.MaritalStatus] = string(p.MaritalStatus)
	s.fields[f.Nationality] = string(p.Nationality)
	s.fields[f.Occupation] = string(p.Occupation)
	s.fields[f.FullName] = p.FullName()
	return s
}

func (m *Mapper) deathRecord(d model.DeathRecord) section {
	f := m.schema.DeathRecord
	s := newSection()
	s.fields[f.Circumscription] = string(d.Circumscription)
	s.fields[f.RegistryType] = string(d.RegistryType)
	s.fields[f.Year] = string(d.Year)
	s.fields[f.EntryNumber] = string(d.EntryNumber)
	s.fields[f.Place] = string(d.Place)
	return s
}

func (m *Mapper) domicile(d model.Domicile) section {
	f := m.schema.Domicile
	s := newSection()
	s.fields[f.Street] = string(d.Street)
	s.fields[f.Number] = string(d.Number)
	s.fields[f.Letter] = string(d.Letter)
	s.fields[f.Rest] = string(d.Rest)
	s.fields[f.Commune] = string(d.Commune)
	s.fields[f.Region] = string(d.Region)
	return s
}

// regime also carries the founding instrument, which is printed whether or
// not a representative is declared.
func (m *Mapper) regime(in *model.CaseInput) section {
	f := m.schema.Regime
	s := newSection()
	s.fields[f.MatrimonialRegime] = string(in.MatrimonialRegime)
	s.fields[f.Subregistrations] = string(in.MarriageSubregistrations)
	s.fields[f.FoundingDocument] = string(in.Representative.FoundingDocument)
	s.fields[f.DocumentDate] = string(in.Representative.DocumentDate)
	s.fields[f.AuthorizingNotary] = string(in.Representative.AuthorizingNotary)
	return s
}

func (m *Mapper) party(f formschema.Party, p model.Person) section {
	s := newSection()
	body, check := format.NationalID(string(p.NationalID))
	s.fields[f.RUT] = body
	s.fields[f.CheckDigit] = check
	s.fields[f.FirstNames] = string(p.FirstNames)
	s.fields[f.FirstSurname] = string(p.FirstSurname)
	s.fields[f.SecondSurname] = string(p.SecondSurname)
	s.fields[f.Street] = string(p.Street)
	s.fields[f.StreetNumber] = string(p.StreetNumber)
	s.fields[f.StreetLetter] = string(p.StreetLetter)
	s.fields[f.AddressRest] = string(p.AddressRest)
	s.fields[f.Commune] = string(p.Commune)
	s.fields[f.Region] = string(p.Region)
	if f.ContactChannel != "" {
		s.fields[f.ContactChannel] = string(p.ContactChannel)
	}
	s.fields[f.Email] = string(p.Email)
	s.fields[f.Phone] = string(p.Phone)

	nationality := strings.TrimSpace(p.Nationality.Or(NationalityChilean))
	s.checkboxes[f.RUNCheckbox] = nationality == NationalityChilean
	s.checkboxes[f.RUTCheckbox] = nationality == NationalityForeign
	return s
}

func (m *Mapper) applicant(p model.Person) section {
	return m.party(m.schema.Applicant, p)
}

// representative emits nothing at all when no RUT is declared
func (m *Mapper) representative(r model.Representative) section {
	if r.NationalID == "" {
		return newSection()
	}
	f := m.schema.Representative
	s := m.party(f.Party, r.Person)
	s.fields[f.Kind] = string(r.Kind)
	s.fields[f.Assignee] = string(r.Assignee)
	return s
}

func (m *Mapper) heirs(heirs []*model.Heir) section {
	f := m.schema.Heirs
	s := newSection()
	for i, h := range heirs {
		suffix, ok := HeirSuffix(i, m.schema.Layout)
		if !ok {
			break
		}
		if h == nil {
			continue
		}
		s.fields[formschema.Indexed(f.RUT, suffix)] = format.NationalIDDisplay(string(h.NationalID))
		s.fields[formschema.Indexed(f.FullName, suffix)] = h.FullName()
		s.fields[formschema.Indexed(f.BirthDate, suffix)] = format.Date(string(h.BirthDate))
		s.fields[formschema.Indexed(f.DeathDate, suffix)] = format.Date(string(h.DeathDate))
		s.fields[formschema.Indexed(f.Relationship, suffix)] = format.Relationship(string(h.Relationship))
		s.fields[formschema.Indexed(f.RepresentationRUN, suffix)] = string(h.RepresentationRUN)
		s.fields[formschema.Indexed(f.Domicile, suffix)] = h.Domicile()
		s.checkboxes[formschema.Indexed(f.CedingCheckbox, suffix)] = h.IsCeding()
	}
	return s
}

func (m *Mapper) inventory(in *model.CaseInput) section {
	f := m.schema.Inventory
	s := newSection()
	s.fields[f.Observations] = string(in.Observations)
	s.fields[f.SheetCount] = in.InventorySheets.Or("1")
	s.fields[f.Benefit] = string(in.InventoryBenefit)
	if in.Presumption {
		s.fields[f.Presumption] = "1"
	} else {
		s.fields[f.Presumption] = "2"
	}
	return s
}

// taxDeclaration checks exactly one box; anything unrecognized is exempt
func (m *Mapper) taxDeclaration(status model.Text) section {
	f := m.schema.TaxDeclaration
	s := newSection()
	normalized := strings.ToLower(strings.TrimSpace(status.Or(TaxExempt)))
	some := normalized == TaxSomeTaxable
	all := normalized == TaxAllTaxable
	s.checkboxes[f.Exempt] = !some && !all
	s.checkboxes[f.SomeTaxable] = some
	s.checkboxes[f.AllTaxable] = all
	return s
}

func (m *Mapper) totals(in *model.CaseInput, t Totals) section {
	s := newSection()
	s.fields[m.schema.RealEstate.Total] = format.Amount(t.RealEstate)
	s.fields[m.schema.Vehicles.Total] = format.Amount(t.Vehicles)
	s.fields[m.schema.Household.Total] = format.Amount(t.HouseholdGoods)
	s.fields[m.schema.OtherMovables.Total] = format.Amount(t.OtherMovables)
	s.fields[m.schema.OtherAssets.Total] = format.Amount(t.OtherAssets)
	s.fields[m.schema.Liabilities.Total] = format.Amount(t.Liabilities)
	s.fields[m.schema.Inventory.TotalAssets] = format.Amount(t.Assets())
	s.fields[m.schema.Inventory.NetEstate] = format.Amount(t.NetEstate())
	s.fields[m.schema.Inventory.UTMValue] = string(in.UTMValue)
	return s
}

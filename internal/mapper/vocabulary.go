package mapper

import (
	"sort"
	"strconv"

	"github.com/a3tai/posesion-efectiva/internal/model"
)

// Vocabulary lists every field and checkbox name the mapper can write for
// its schema, sorted. It is derived by mapping a case that fills every slot,
// once with and once without the presumption.
func (m *Mapper) Vocabulary() (fields []string, checkboxes []string) {
	fieldSet := map[string]struct{}{}
	checkboxSet := map[string]struct{}{}

	for _, presumption := range []bool{false, true} {
		res := m.Map(m.saturatedCase(presumption))
		for name := range res.Fields {
			fieldSet[name] = struct{}{}
		}
		for name := range res.Checkboxes {
			checkboxSet[name] = struct{}{}
		}
	}

	return sortedKeys(fieldSet), sortedKeys(checkboxSet)
}

// saturatedCase builds a case with every field set and every slot occupied
func (m *Mapper) saturatedCase(presumption bool) *model.CaseInput {
	l := m.schema.Layout
	person := model.Person{
		FirstNames: "x", FirstSurname: "x", SecondSurname: "x",
		NationalID: "1-9", Nationality: "1",
		BirthDate: "2000-01-01", DeathDate: "2000-01-01",
		MaritalStatus: "x", Occupation: "x",
		Street: "x", StreetNumber: "1", StreetLetter: "x", AddressRest: "x",
		Commune: "x", Region: "x", ContactChannel: "x", Email: "x", Phone: "x",
	}

	in := &model.CaseInput{
		Decedent:       person,
		Applicant:      person,
		Representative: model.Representative{Person: person, Kind: "x", Assignee: "x"},
		Presumption:    model.Flag(presumption),
	}
	for range l.HeirsFirstBlock + l.HeirsSecondBlock {
		in.Heirs = append(in.Heirs, &model.Heir{NationalID: "1-9"})
	}
	for i := range l.CategorySlots {
		v := model.Text(strconv.Itoa(i + 1))
		in.RealEstate = append(in.RealEstate, &model.RealEstate{Valuation: v})
		in.Vehicles = append(in.Vehicles, &model.Vehicle{Valuation: v})
		in.OtherMovables = append(in.OtherMovables, &model.Asset{Valuation: v})
		in.OtherAssets = append(in.OtherAssets, &model.Asset{Valuation: v})
		in.Liabilities = append(in.Liabilities, &model.Liability{Valuation: v})
	}
	for range l.HouseholdSlots {
		in.HouseholdGoods = append(in.HouseholdGoods, &model.Asset{Valuation: "1"})
	}
	return in
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

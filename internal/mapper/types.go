package mapper

import "github.com/a3tai/posesion-efectiva/internal/model"

// FieldMap maps a text field name to its display value. Values are never
// absent; an unset role is the empty string.
type FieldMap map[string]string

// CheckboxMap maps a checkbox name to its state
type CheckboxMap map[string]bool

// Category is a bounded inventory list of the form
type Category int

const (
	CategoryRealEstate Category = iota
	CategoryVehicles
	CategoryHouseholdGoods
	CategoryOtherMovables
	CategoryOtherAssets
	CategoryLiabilities
)

// Categories lists every bounded category in form order
var Categories = []Category{
	CategoryRealEstate,
	CategoryVehicles,
	CategoryHouseholdGoods,
	CategoryOtherMovables,
	CategoryOtherAssets,
	CategoryLiabilities,
}

// String returns the JSON key of the category
func (c Category) String() string {
	switch c {
	case CategoryRealEstate:
		return "bienes_raices"
	case CategoryVehicles:
		return "vehiculos"
	case CategoryHouseholdGoods:
		return "menaje"
	case CategoryOtherMovables:
		return "otros_muebles"
	case CategoryOtherAssets:
		return "otros_bienes"
	case CategoryLiabilities:
		return "pasivos"
	default:
		return "desconocida"
	}
}

// Title is the section heading used on annex pages and exports
func (c Category) Title() string {
	switch c {
	case CategoryRealEstate:
		return "Bienes Raíces"
	case CategoryVehicles:
		return "Vehículos"
	case CategoryHouseholdGoods:
		return "Menaje"
	case CategoryOtherMovables:
		return "Otros Bienes Muebles (Negocios y Derechos)"
	case CategoryOtherAssets:
		return "Otros Activos"
	case CategoryLiabilities:
		return "Pasivos"
	default:
		return "Otros"
	}
}

// Totals holds one sum per category, taken over the whole list
type Totals struct {
	RealEstate     int64 `json:"bienes_raices"`
	Vehicles       int64 `json:"vehiculos"`
	HouseholdGoods int64 `json:"menaje"`
	OtherMovables  int64 `json:"otros_muebles"`
	OtherAssets    int64 `json:"otros_bienes"`
	Liabilities    int64 `json:"pasivos"`
}

// Of returns the total of one category
func (t Totals) Of(c Category) int64 {
	switch c {
	case CategoryRealEstate:
		return t.RealEstate
	case CategoryVehicles:
		return t.Vehicles
	case CategoryHouseholdGoods:
		return t.HouseholdGoods
	case CategoryOtherMovables:
		return t.OtherMovables
	case CategoryOtherAssets:
		return t.OtherAssets
	case CategoryLiabilities:
		return t.Liabilities
	default:
		return 0
	}
}

// Assets is the sum of the five asset categories
func (t Totals) Assets() int64 {
	return t.RealEstate + t.Vehicles + t.HouseholdGoods + t.OtherMovables + t.OtherAssets
}

// NetEstate is assets minus liabilities; it may be negative
func (t Totals) NetEstate() int64 {
	return t.Assets() - t.Liabilities
}

// OverflowEntry is a list entry with no dedicated slot on the form
type OverflowEntry struct {
	// Position is the zero-based index in the submitted list
	Position int
	Entry    model.Entry
}

// OverflowGroup holds the entries of one category beyond its slot capacity
type OverflowGroup struct {
	Category Category
	Capacity int
	Entries  []OverflowEntry
}

// OverflowSet lists the non-empty overflow groups in category order
type OverflowSet []OverflowGroup

// Empty reports whether every list fits its slots
func (o OverflowSet) Empty() bool {
	return len(o) == 0
}

// Count returns the number of overflowing entries across categories
func (o OverflowSet) Count() int {
	n := 0
	for _, g := range o {
		n += len(g.Entries)
	}
	return n
}

// Result is everything derived from one CaseInput
type Result struct {
	Fields     FieldMap
	Checkboxes CheckboxMap
	Totals     Totals
	Overflow   OverflowSet
}

// section is the output of one independent mapping step
type section struct {
	fields     FieldMap
	checkboxes CheckboxMap
}

func newSection() section {
	return section{fields: FieldMap{}, checkboxes: CheckboxMap{}}
}

func (r *Result) merge(s section) {
	for k, v := range s.fields {
		r.Fields[k] = v
	}
	for k, v := range s.checkboxes {
		r.Checkboxes[k] = v
	}
}

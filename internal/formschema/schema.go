// Package formschema is the field-name vocabulary of the printed template,
// keyed by logical role. The mapping logic only refers to roles; the names
// themselves live in a versioned YAML table so that a template revision only
// touches the table.
package formschema

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed posesion_efectiva_v1.yaml
var defaultSchema []byte

// Schema is one version of the template vocabulary
type Schema struct {
	Version        string         `yaml:"version"`
	Layout         Layout         `yaml:"layout"`
	Presumption    Presumption    `yaml:"presumption"`
	Decedent       Decedent       `yaml:"decedent"`
	DeathRecord    DeathRecord    `yaml:"death_record"`
	Domicile       Domicile       `yaml:"domicile"`
	Regime         Regime         `yaml:"regime"`
	Applicant      Party          `yaml:"applicant"`
	Representative Representative `yaml:"representative"`
	Heirs          Heirs          `yaml:"heirs"`
	Inventory      Inventory      `yaml:"inventory"`
	TaxDeclaration TaxDeclaration `yaml:"tax_declaration"`
	RealEstate     RealEstate     `yaml:"real_estate"`
	Vehicles       Vehicles       `yaml:"vehicles"`
	Household      Household      `yaml:"household"`
	OtherMovables  SharedAsset    `yaml:"other_movables"`
	OtherAssets    SharedAsset    `yaml:"other_assets"`
	Liabilities    Liabilities    `yaml:"liabilities"`
}

// Layout holds the physical capacities of the form
type Layout struct {
	// InventoryPage is the zero-based page replicated for extra inventory sheets
	InventoryPage int `yaml:"inventory_page"`
	// MaxInventorySheets bounds the declared sheet count of a case
	MaxInventorySheets int    `yaml:"max_inventory_sheets"`
	HeirsFirstBlock    int    `yaml:"heirs_first_block"`
	HeirsSecondBlock   int    `yaml:"heirs_second_block"`
	HeirsSecondPrefix  string `yaml:"heirs_second_prefix"`
	CategorySlots      int    `yaml:"category_slots"`
	// HouseholdSlots are the field indexes of the household table in
	// display order. Index 8 is not part of the printed table.
	HouseholdSlots []int `yaml:"household_slots"`
}

// Presumption configures the 20% household-goods valuation
type Presumption struct {
	Rate      decimal.Decimal `yaml:"rate"`
	Label     string          `yaml:"label"`
	Ownership string          `yaml:"ownership"`
}

// Decedent fields
type Decedent struct {
	RUT           string `yaml:"rut"`
	CheckDigit    string `yaml:"check_digit"`
	FirstNames    string `yaml:"first_names"`
	FirstSurname  string `yaml:"first_surname"`
	SecondSurname string `yaml:"second_surname"`
	BirthDay      string `yaml:"birth_day"`
	BirthMonth    string `yaml:"birth_month"`
	BirthYear     string `yaml:"birth_year"`
	DeathDay      string `yaml:"death_day"`
	DeathMonth    string `yaml:"death_month"`
	DeathYear     string `yaml:"death_year"`
	MaritalStatus string `yaml:"marital_status"`
	Nationality   string `yaml:"nationality"`
	Occupation    string `yaml:"occupation"`
	FullName      string `yaml:"full_name"`
}

// DeathRecord fields
type DeathRecord struct {
	Circumscription string `yaml:"circumscription"`
	RegistryType    string `yaml:"registry_type"`
	Year            string `yaml:"year"`
	EntryNumber     string `yaml:"entry_number"`
	Place           string `yaml:"place"`
}

// Domicile fields of the decedent's last domicile
type Domicile struct {
	Street  string `yaml:"street"`
	Number  string `yaml:"number"`
	Letter  string `yaml:"letter"`
	Rest    string `yaml:"rest"`
	Commune string `yaml:"commune"`
	Region  string `yaml:"region"`
}

// Regime fields: matrimonial regime and the founding instrument
type Regime struct {
	MatrimonialRegime string `yaml:"matrimonial_regime"`
	Subregistrations  string `yaml:"subregistrations"`
	FoundingDocument  string `yaml:"founding_document"`
	DocumentDate      string `yaml:"document_date"`
	AuthorizingNotary string `yaml:"authorizing_notary"`
}

// Party is the identity/address block shared by applicant and representative
type Party struct {
	RUT            string `yaml:"rut"`
	CheckDigit     string `yaml:"check_digit"`
	FirstNames     string `yaml:"first_names"`
	FirstSurname   string `yaml:"first_surname"`
	SecondSurname  string `yaml:"second_surname"`
	Street         string `yaml:"street"`
	StreetNumber   string `yaml:"street_number"`
	StreetLetter   string `yaml:"street_letter"`
	AddressRest    string `yaml:"address_rest"`
	Commune        string `yaml:"commune"`
	Region         string `yaml:"region"`
	ContactChannel string `yaml:"contact_channel,omitempty"`
	Email          string `yaml:"email"`
	Phone          string `yaml:"phone"`
	RUNCheckbox    string `yaml:"run_checkbox"`
	RUTCheckbox    string `yaml:"rut_checkbox"`
}

// Representative fields
type Representative struct {
	Party    `yaml:",inline"`
	Kind     string `yaml:"kind"`
	Assignee string `yaml:"assignee"`
}

// Heirs holds the base names of the repeated heir row
type Heirs struct {
	RUT               string `yaml:"rut"`
	FullName          string `yaml:"full_name"`
	BirthDate         string `yaml:"birth_date"`
	DeathDate         string `yaml:"death_date"`
	Relationship      string `yaml:"relationship"`
	RepresentationRUN string `yaml:"representation_run"`
	Domicile          string `yaml:"domicile"`
	CedingCheckbox    string `yaml:"ceding_checkbox"`
}

// Inventory holds the general inventory and grand-total fields
type Inventory struct {
	Observations string `yaml:"observations"`
	SheetCount   string `yaml:"sheet_count"`
	Benefit      string `yaml:"benefit"`
	Presumption  string `yaml:"presumption"`
	UTMValue     string `yaml:"utm_value"`
	TotalAssets  string `yaml:"total_assets"`
	NetEstate    string `yaml:"net_estate"`
}

// TaxDeclaration holds the three mutually exclusive checkboxes
type TaxDeclaration struct {
	Exempt      string `yaml:"exempt"`
	SomeTaxable string `yaml:"some_taxable"`
	AllTaxable  string `yaml:"all_taxable"`
}

// RealEstate holds the base names of the real-estate row
type RealEstate struct {
	TaxRoll         string `yaml:"tax_roll"`
	Kind            string `yaml:"kind"`
	Commune         string `yaml:"commune"`
	AcquisitionDate string `yaml:"acquisition_date"`
	Folio           string `yaml:"folio"`
	RegistryNumber  string `yaml:"registry_number"`
	RegistryYear    string `yaml:"registry_year"`
	Registrar       string `yaml:"registrar"`
	Ownership       string `yaml:"ownership"`
	Value           string `yaml:"value"`
	Exemption       string `yaml:"exemption"`
	Total           string `yaml:"total"`
}

// Vehicles holds the base names of the vehicle row
type Vehicles struct {
	Plate     string `yaml:"plate"`
	TaxCode   string `yaml:"tax_code"`
	Kind      string `yaml:"kind"`
	Make      string `yaml:"make"`
	Model     string `yaml:"model"`
	Year      string `yaml:"year"`
	Chassis   string `yaml:"chassis"`
	Ownership string `yaml:"ownership"`
	Value     string `yaml:"value"`
	Total     string `yaml:"total"`
}

// Household holds the base names of the household-goods row
type Household struct {
	Description string `yaml:"description"`
	Ownership   string `yaml:"ownership"`
	Value       string `yaml:"value"`
	Total       string `yaml:"total"`
}

// SharedAsset is a category whose description and P/S are single-valued on
// the form while the values are numbered 1..N.
type SharedAsset struct {
	Description string `yaml:"description"`
	Ownership   string `yaml:"ownership"`
	Value       string `yaml:"value"`
	Total       string `yaml:"total"`
}

// Liabilities fields
type Liabilities struct {
	Description    string `yaml:"description"`
	Creditor       string `yaml:"creditor"`
	DocumentNumber string `yaml:"document_number"`
	Value          string `yaml:"value"`
	Total          string `yaml:"total"`
}

// Indexed names a repeated widget: "BASE.suffix"
func Indexed(base, suffix string) string {
	return base + "." + suffix
}

// Numbered names a value cell of a shared category: "BASE1".."BASEn"
func Numbered(base string, n int) string {
	return base + strconv.Itoa(n)
}

// Default returns the schema of the bundled template
func Default() *Schema {
	s, err := Parse(defaultSchema)
	if err != nil {
		panic(fmt.Sprintf("embedded form schema is invalid: %v", err))
	}
	return s
}

// Load reads a schema from a YAML file
func Load(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open form schema: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes and validates a schema
func Read(r io.Reader) (*Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read form schema: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a schema from YAML bytes
func Parse(data []byte) (*Schema, error) {
	s := &Schema{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse form schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the capacities and that every role has a field name
func (s *Schema) Validate() error {
	if s.Version == "" {
		return fmt.Errorf("form schema: version cannot be empty")
	}
	l := s.Layout
	if l.InventoryPage < 0 {
		return fmt.Errorf("form schema: inventory_page must not be negative")
	}
	if l.MaxInventorySheets < 1 {
		return fmt.Errorf("form schema: max_inventory_sheets must be positive")
	}
	if l.HeirsFirstBlock < 0 || l.HeirsSecondBlock < 0 {
		return fmt.Errorf("form schema: heir blocks must not be negative")
	}
	if l.CategorySlots < 1 {
		return fmt.Errorf("form schema: category_slots must be positive")
	}
	if len(l.HouseholdSlots) == 0 {
		return fmt.Errorf("form schema: household_slots cannot be empty")
	}
	seen := make(map[int]bool, len(l.HouseholdSlots))
	for _, slot := range l.HouseholdSlots {
		if slot < 0 || seen[slot] {
			return fmt.Errorf("form schema: invalid household slot %d", slot)
		}
		seen[slot] = true
	}
	if s.Presumption.Rate.IsNegative() {
		return fmt.Errorf("form schema: presumption rate must not be negative")
	}
	return checkNames(reflect.ValueOf(*s), "")
}

// checkNames walks the name tables and rejects empty field names
func checkNames(v reflect.Value, path string) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := yamlKey(f)
		fv := v.Field(i)
		switch {
		case f.Type == reflect.TypeOf(Layout{}), f.Type == reflect.TypeOf(Presumption{}):
			continue
		case fv.Kind() == reflect.Struct:
			sub := path
			if !f.Anonymous {
				sub = joinPath(path, key)
			}
			if err := checkNames(fv, sub); err != nil {
				return err
			}
		case fv.Kind() == reflect.String && path != "":
			if fv.String() == "" && key != "contact_channel" {
				return fmt.Errorf("form schema: missing field name for %s", joinPath(path, key))
			}
		}
	}
	return nil
}

func yamlKey(f reflect.StructField) string {
	tag := f.Tag.Get("yaml")
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			return tag[:i]
		}
	}
	return tag
}

func joinPath(a, b string) string {
	if a == "" {
		return b
	}
	return a + "." + b
}

// Package model holds the submitted "Posesión Efectiva" case as decoded from
// the front-end JSON. JSON keys keep the Spanish names the front-end and the
// stored drafts use.
package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-json"
)

// CaseInput is the full submitted form. Nested objects that are absent decode
// to their zero value so every read is null-safe. It is never mutated once
// decoded.
type CaseInput struct {
	Decedent         Person         `json:"causante"`
	Applicant        Person         `json:"solicitante"`
	Representative   Representative `json:"representante"`
	DeathRecord      DeathRecord    `json:"partida"`
	DecedentDomicile Domicile       `json:"domicilio_causante"`

	MatrimonialRegime        Text `json:"regimen_patrimonial"`
	MarriageSubregistrations Text `json:"subinscripciones"`

	Heirs []*Heir `json:"herederos"`

	RealEstate     []*RealEstate `json:"bienes_raices"`
	Vehicles       []*Vehicle    `json:"vehiculos"`
	HouseholdGoods []*Asset      `json:"menaje"`
	OtherMovables  []*Asset      `json:"otros_muebles"`
	OtherAssets    []*Asset      `json:"otros_bienes"`
	Liabilities    []*Liability  `json:"pasivos"`

	Presumption      Flag `json:"presuncion_20"`
	InventorySheets  Text `json:"inventario_hojas"`
	InventoryBenefit Text `json:"beneficio_inventario"`
	TaxDeclaration   Text `json:"declaracion_impuesto"`
	Observations     Text `json:"observaciones"`
	UTMValue         Text `json:"valor_utm"`
}

// Decode parses a CaseInput from its JSON form
func Decode(data []byte) (*CaseInput, error) {
	in := &CaseInput{}
	if err := json.Unmarshal(data, in); err != nil {
		return nil, fmt.Errorf("invalid case JSON: %w", err)
	}
	return in, nil
}

// SheetCount returns the declared number of inventory sheets, at least 1.
func (c *CaseInput) SheetCount() int {
	n, ok := c.InventorySheets.Int()
	if !ok || n < 1 {
		return 1
	}
	return int(min(n, math.MaxInt32))
}

// Person carries the identity, address and contact parts shared by the
// decedent and the applicant.
type Person struct {
	FirstNames     Text `json:"nombres"`
	FirstSurname   Text `json:"primer_apellido"`
	SecondSurname  Text `json:"segundo_apellido"`
	NationalID     Text `json:"rut"`
	Nationality    Text `json:"nacionalidad"`
	BirthDate      Text `json:"fecha_nacimiento"`
	DeathDate      Text `json:"fecha_defuncion"`
	MaritalStatus  Text `json:"estado_civil"`
	Occupation     Text `json:"actividad"`
	Street         Text `json:"calle"`
	StreetNumber   Text `json:"numero_calle"`
	StreetLetter   Text `json:"letra"`
	AddressRest    Text `json:"resto_domicilio"`
	Commune        Text `json:"comuna"`
	Region         Text `json:"region"`
	ContactChannel Text `json:"medio_contacto"`
	Email          Text `json:"correo"`
	Phone          Text `json:"telefono"`
}

// FullName joins the non-empty name parts with single spaces
func (p Person) FullName() string {
	return JoinNonEmpty(p.FirstNames, p.FirstSurname, p.SecondSurname)
}

// Representative is the applicant's legal representative together with the
// founding instrument of the representation.
type Representative struct {
	Person
	Kind              Text `json:"tipo"`
	Assignee          Text `json:"cesionario"`
	FoundingDocument  Text `json:"documento_fundante"`
	DocumentDate      Text `json:"fecha_doc"`
	AuthorizingNotary Text `json:"autorizante"`
}

// DeathRecord is the civil-registry entry of the death
type DeathRecord struct {
	Circumscription Text `json:"circunscripcion"`
	RegistryType    Text `json:"tipo_registro"`
	Year            Text `json:"ano"`
	EntryNumber     Text `json:"n_inscripcion"`
	Place           Text `json:"lugar_defuncion"`
}

// Domicile is the decedent's last domicile
type Domicile struct {
	Street  Text `json:"calle"`
	Number  Text `json:"numero"`
	Letter  Text `json:"letra"`
	Rest    Text `json:"resto"`
	Commune Text `json:"comuna"`
	Region  Text `json:"region"`
}

// Heir is one line of the heirs table
type Heir struct {
	FirstNames        Text `json:"nombres"`
	FirstSurname      Text `json:"primer_apellido"`
	SecondSurname     Text `json:"segundo_apellido"`
	NationalID        Text `json:"rut"`
	BirthDate         Text `json:"fecha_nacimiento"`
	DeathDate         Text `json:"fecha_defuncion"`
	Relationship      Text `json:"calidad"`
	RepresentationRUN Text `json:"run_representacion"`
	Address           Text `json:"domicilio"`
	Commune           Text `json:"comuna"`
	Region            Text `json:"region"`
	Ceding            Text `json:"cedente"`
}

// FullName joins the non-empty name parts with single spaces
func (h *Heir) FullName() string {
	return JoinNonEmpty(h.FirstNames, h.FirstSurname, h.SecondSurname)
}

// Domicile joins the non-empty address, commune and region
func (h *Heir) Domicile() string {
	return JoinNonEmpty(h.Address, h.Commune, h.Region)
}

// IsCeding reports whether the heir transfers their share. Accepted values
// are S, SI and 1, in any case.
func (h *Heir) IsCeding() bool {
	switch strings.ToUpper(strings.TrimSpace(string(h.Ceding))) {
	case "S", "SI", "1":
		return true
	}
	return false
}

// JoinNonEmpty joins the non-empty values with single spaces
func JoinNonEmpty(parts ...Text) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, string(p))
		}
	}
	return strings.Join(kept, " ")
}

package model

// Entry is one line of a bounded inventory category.
type Entry interface {
	// Amount is the declared valuation, 0 when missing or not numeric
	Amount() int64
	// Ownership is the private/marital flag, "P" when not declared
	Ownership() string
}

// RealEstate is a real-estate asset with its land-registry references
type RealEstate struct {
	TaxRoll         Text `json:"rol_sii"`
	Kind            Text `json:"tipo"`
	Commune         Text `json:"comuna"`
	AcquisitionDate Text `json:"fecha_adquisicion"`
	Folio           Text `json:"fojas"`
	RegistryNumber  Text `json:"numero_cbr"`
	RegistryYear    Text `json:"ano_cbr"`
	Registrar       Text `json:"conservador"`
	PS              Text `json:"ps"`
	Valuation       Text `json:"valoracion"`
	Exemption       Text `json:"exencion"`
}

// Amount implements Entry
func (r *RealEstate) Amount() int64 {
	if r == nil {
		return 0
	}
	return r.Valuation.Amount()
}

// Ownership implements Entry
func (r *RealEstate) Ownership() string {
	if r == nil {
		return ""
	}
	return r.PS.Or("P")
}

// ExemptionAmount is the declared exemption, 0 when missing or not numeric
func (r *RealEstate) ExemptionAmount() int64 {
	if r == nil {
		return 0
	}
	return r.Exemption.Amount()
}

// Vehicle is a registered motor vehicle
type Vehicle struct {
	Plate     Text `json:"ppu"`
	TaxCode   Text `json:"codigo_sii"`
	Kind      Text `json:"tipo"`
	Make      Text `json:"marca"`
	Model     Text `json:"modelo"`
	Year      Text `json:"ano"`
	ChassisID Text `json:"n_identificacion"`
	PS        Text `json:"ps"`
	Valuation Text `json:"valoracion"`
}

// Amount implements Entry
func (v *Vehicle) Amount() int64 {
	if v == nil {
		return 0
	}
	return v.Valuation.Amount()
}

// Ownership implements Entry
func (v *Vehicle) Ownership() string {
	if v == nil {
		return ""
	}
	return v.PS.Or("P")
}

// Asset is a described asset: household goods, other movables, other assets
// and rights.
type Asset struct {
	Description Text `json:"descripcion"`
	PS          Text `json:"ps"`
	Valuation   Text `json:"valoracion"`
}

// Amount implements Entry
func (a *Asset) Amount() int64 {
	if a == nil {
		return 0
	}
	return a.Valuation.Amount()
}

// Ownership implements Entry
func (a *Asset) Ownership() string {
	if a == nil {
		return ""
	}
	return a.PS.Or("P")
}

// Liability is a debt of the estate
type Liability struct {
	Description    Text `json:"descripcion"`
	Creditor       Text `json:"acreedor"`
	DocumentNumber Text `json:"n_documento"`
	PS             Text `json:"ps"`
	Valuation      Text `json:"valoracion"`
}

// Amount implements Entry
func (l *Liability) Amount() int64 {
	if l == nil {
		return 0
	}
	return l.Valuation.Amount()
}

// Ownership implements Entry
func (l *Liability) Ownership() string {
	if l == nil {
		return ""
	}
	return l.PS.Or("P")
}

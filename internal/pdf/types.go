package pdf

import (
	"github.com/a3tai/posesion-efectiva/internal/errors"
	"github.com/a3tai/posesion-efectiva/internal/mapper"
	"github.com/a3tai/posesion-efectiva/internal/overflow"
	"github.com/a3tai/posesion-efectiva/internal/pdf/extraction"
)

// User-facing operation messages
const (
	opGenerate = "Error al generar el PDF"
	opFields   = "Error al leer los campos de la plantilla"
)

// FillResult is a generated document and what went into it
type FillResult struct {
	PDF      []byte `json:"-"`
	Filename string `json:"filename"`
	Pages    int    `json:"pages"`
	Size     int    `json:"size"`
	// ExtraPages counts the pages appended by the overflow strategy
	ExtraPages int               `json:"extra_pages"`
	Strategy   overflow.Strategy `json:"-"`
	Totals     mapper.Totals     `json:"totals"`
	// Missing lists field names the template does not have
	Missing *errors.Collection `json:"missing"`
}

// FieldReport compares the template's form fields with the schema vocabulary
type FieldReport struct {
	Template string                    `json:"template"`
	Version  string                    `json:"schema_version"`
	Pages    int                       `json:"pages"`
	Fields   []extraction.CatalogField `json:"fields"`
	// MissingFields and MissingCheckboxes are schema names absent from the template
	MissingFields     []string `json:"missing_fields"`
	MissingCheckboxes []string `json:"missing_checkboxes"`
}

// Complete reports whether the template has every name the schema uses
func (r *FieldReport) Complete() bool {
	return len(r.MissingFields) == 0 && len(r.MissingCheckboxes) == 0
}

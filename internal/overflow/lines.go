package overflow

import (
	"fmt"
	"strings"

	"github.com/a3tai/posesion-efectiva/internal/format"
	"github.com/a3tai/posesion-efectiva/internal/mapper"
	"github.com/a3tai/posesion-efectiva/internal/model"
)

const lineSeparator = " | "

// Line renders one overflowing entry as a single annex line. The position is
// printed one-based so it matches the numbering of the submitted list.
func Line(e mapper.OverflowEntry) string {
	parts := []string{fmt.Sprintf("N° %d", e.Position+1)}
	parts = append(parts, details(e.Entry)...)

	switch v := e.Entry.(type) {
	case *model.RealEstate:
		parts = append(parts,
			v.Ownership(),
			"Valor $"+format.Amount(v.Amount()),
			"Exención $"+format.Amount(v.ExemptionAmount()),
		)
	case *model.Vehicle, *model.Asset:
		parts = append(parts, v.Ownership(), "Valor $"+format.Amount(v.Amount()))
	default:
		parts = append(parts, "Valor $"+format.Amount(e.Entry.Amount()))
	}

	return strings.Join(parts, lineSeparator)
}

// Details renders the descriptive attributes of an entry, without ownership
// or amounts
func Details(entry model.Entry) string {
	return strings.Join(details(entry), lineSeparator)
}

func details(entry model.Entry) []string {
	switch v := entry.(type) {
	case *model.RealEstate:
		return appendLabeled(nil,
			"Rol SII", string(v.TaxRoll),
			"", string(v.Kind),
			"Comuna", string(v.Commune),
			"Adquisición", format.Date(string(v.AcquisitionDate)),
			"Fojas", string(v.Folio),
			"N°", string(v.RegistryNumber),
			"Año", string(v.RegistryYear),
			"CBR", string(v.Registrar),
		)
	case *model.Vehicle:
		return appendLabeled(nil,
			"PPU", string(v.Plate),
			"Código SII", string(v.TaxCode),
			"", string(v.Kind),
			"", model.JoinNonEmpty(v.Make, v.Model, v.Year),
			"Chasis", string(v.ChassisID),
		)
	case *model.Asset:
		return appendLabeled(nil, "", string(v.Description))
	case *model.Liability:
		return appendLabeled(nil,
			"", string(v.Description),
			"Acreedor", string(v.Creditor),
			"Documento", string(v.DocumentNumber),
		)
	default:
		return nil
	}
}

// appendLabeled appends "label value" for every non-empty value of the
// label/value pairs.
func appendLabeled(parts []string, pairs ...string) []string {
	for i := 0; i+1 < len(pairs); i += 2 {
		label, value := pairs[i], strings.TrimSpace(pairs[i+1])
		if value == "" {
			continue
		}
		if label == "" {
			parts = append(parts, value)
		} else {
			parts = append(parts, label+" "+value)
		}
	}
	return parts
}

// Heading is the bold header line of a category block
func Heading(g mapper.OverflowGroup) string {
	return fmt.Sprintf("%s (continuación desde N° %d)", strings.ToUpper(g.Category.Title()), g.Capacity+1)
}

// Subtotal sums the annexed entries of a group
func Subtotal(g mapper.OverflowGroup) int64 {
	var total int64
	for _, e := range g.Entries {
		total += e.Entry.Amount()
	}
	return total
}

// Truncate cuts s to at most limit characters
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

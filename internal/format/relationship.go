package format

import "strings"

const (
	labelSpouse      = "Cónyuge/Conv.Civil"
	labelChild       = "Hijo(a)"
	labelGrandchild  = "Nieto(a)"
	labelParent      = "Padre/Madre"
	labelGrandparent = "Abuelo(a)"
	labelSibling     = "Hermano(a)"
	labelNibling     = "Sobrino(a)"
	labelUncleAunt   = "Tío(a)"
	labelCousin      = "Primo(a)"
	labelOther       = "Otro"
)

// relationships maps the short codes and the free-text variants the
// front-end produces to the label printed on the form.
var relationships = map[string]string{
	"C":  labelSpouse,
	"H":  labelChild,
	"N":  labelGrandchild,
	"P":  labelParent,
	"A":  labelGrandparent,
	"HE": labelSibling,
	"S":  labelNibling,
	"T":  labelUncleAunt,
	"PR": labelCousin,
	"O":  labelOther,

	"Cónyuge":     labelSpouse,
	"Conviviente": labelSpouse,
	"Hijo":        labelChild,
	"Hija":        labelChild,
	"Nieto":       labelGrandchild,
	"Nieta":       labelGrandchild,
	"Padre":       labelParent,
	"Madre":       labelParent,
	"Abuelo":      labelGrandparent,
	"Abuela":      labelGrandparent,
	"Hermano":     labelSibling,
	"Hermana":     labelSibling,
	"Sobrino":     labelNibling,
	"Sobrina":     labelNibling,
	"Tío":         labelUncleAunt,
	"Tía":         labelUncleAunt,
	"Primo":       labelCousin,
	"Prima":       labelCousin,
	"Otro":        labelOther,
	"Otra":        labelOther,
}

// Relationship expands a relationship code or label. The lookup is exact
// first, then upper-cased; unknown values pass through unchanged.
func Relationship(raw string) string {
	if raw == "" {
		return ""
	}
	key := strings.TrimSpace(raw)
	if label, ok := relationships[key]; ok {
		return label
	}
	if label, ok := relationships[strings.ToUpper(key)]; ok {
		return label
	}
	return raw
}

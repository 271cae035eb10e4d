// Package extraction reads the AcroForm of a template into a catalog of its
// terminal fields, keyed by fully qualified name ("RUT HEREDERO.8.3").
package extraction

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// FieldKind is the widget family of a form field
type FieldKind string

const (
	KindText      FieldKind = "text"
	KindCheckbox  FieldKind = "checkbox"
	KindRadio     FieldKind = "radio"
	KindButton    FieldKind = "button"
	KindChoice    FieldKind = "choice"
	KindSignature FieldKind = "signature"
	KindUnknown   FieldKind = "unknown"
)

// Field flag bits (PDF 32000-1, 12.7.3.1 and 12.7.4.2)
const (
	flagReadOnly   = 1
	flagRadio      = 1 << 15
	flagPushButton = 1 << 16
)

// CatalogField is one terminal field of the form
type CatalogField struct {
	Name string    `json:"name"`
	ID   string    `json:"id"`
	Kind FieldKind `json:"kind"`
	// Value is the current text, or the state name of a button
	Value string `json:"value,omitempty"`
	// ReadOnly is set for fields already locked in the template
	ReadOnly bool `json:"read_only,omitempty"`
}

// Catalog indexes the terminal fields of a form by qualified name
type Catalog struct {
	byName map[string]CatalogField
}

// NewCatalog builds a catalog from a field list; later duplicates win
func NewCatalog(fields []CatalogField) *Catalog {
	c := &Catalog{byName: make(map[string]CatalogField, len(fields))}
	for _, f := range fields {
		c.byName[f.Name] = f
	}
	return c
}

// Lookup finds a field by exact qualified name
func (c *Catalog) Lookup(name string) (CatalogField, bool) {
	f, ok := c.byName[name]
	return f, ok
}

// Len returns the number of terminal fields
func (c *Catalog) Len() int {
	return len(c.byName)
}

// Fields returns all fields sorted by name
func (c *Catalog) Fields() []CatalogField {
	out := make([]CatalogField, 0, len(c.byName))
	for _, f := range c.byName {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Missing returns, sorted, the names absent from the catalog
func (c *Catalog) Missing(names []string) []string {
	var missing []string
	for _, n := range names {
		if _, ok := c.byName[n]; !ok {
			missing = append(missing, n)
		}
	}
	sort.Strings(missing)
	return missing
}

// CatalogExtractor walks AcroForm field trees with pdfcpu
type CatalogExtractor struct {
	debugMode bool
}

// NewCatalogExtractor creates an extractor
func NewCatalogExtractor(debugMode bool) *CatalogExtractor {
	return &CatalogExtractor{debugMode: debugMode}
}

// FromFile reads the catalog of a PDF file
func (ce *CatalogExtractor) FromFile(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()
	return ce.FromReader(file)
}

// FromReader reads the catalog of a PDF
func (ce *CatalogExtractor) FromReader(rs io.ReadSeeker) (*Catalog, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}
	return ce.FromContext(ctx)
}

// FromContext reads the catalog of an already parsed document. A document
// without AcroForm yields an empty catalog.
func (ce *CatalogExtractor) FromContext(ctx *model.Context) (*Catalog, error) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		if ce.debugMode {
			log.Println("No AcroForm dictionary found in document")
		}
		return NewCatalog(nil), nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return NewCatalog(nil), nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return NewCatalog(nil), nil
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	w := &walker{ctx: ctx, debugMode: ce.debugMode, visited: map[int]bool{}}
	for _, ref := range fieldsArray {
		w.walk(ref, "", inherited{})
	}
	return NewCatalog(w.fields), nil
}

// inherited holds the inheritable entries of the field tree
type inherited struct {
	fieldType string
	flags     int
	value     types.Object
}

type walker struct {
	ctx       *model.Context
	debugMode bool
	visited   map[int]bool
	fields    []CatalogField
}

func (w *walker) walk(obj types.Object, parentName string, inh inherited) {
	id := ""
	if ref, ok := obj.(types.IndirectRef); ok {
		n := ref.ObjectNumber.Value()
		if w.visited[n] {
			return
		}
		w.visited[n] = true
		id = strconv.Itoa(n)
	}

	d, err := w.ctx.DereferenceDict(obj)
	if err != nil || d == nil {
		if w.debugMode {
			log.Printf("Skipping unreadable field under %q: %v", parentName, err)
		}
		return
	}

	name := parentName
	if tObj, found := d.Find("T"); found {
		if partial, err := w.ctx.DereferenceStringOrHexLiteral(tObj, model.V10, nil); err == nil {
			if name == "" {
				name = partial
			} else {
				name = parentName + "." + partial
			}
		}
	}

	if ftObj, found := d.Find("FT"); found {
		if ft, err := w.ctx.DereferenceName(ftObj, model.V10, nil); err == nil {
			inh.fieldType = string(ft)
		}
	}
	if ffObj, found := d.Find("Ff"); found {
		if ff, err := w.ctx.DereferenceInteger(ffObj); err == nil && ff != nil {
			inh.flags = ff.Value()
		}
	}

	if vObj, found := d.Find("V"); found {
		inh.value = vObj
	}

	fieldKids := w.fieldKids(d)
	if len(fieldKids) > 0 {
		for _, kid := range fieldKids {
			w.walk(kid, name, inh)
		}
		return
	}

	// Kids without a T entry are widget annotations of this field.
	if name == "" {
		return
	}
	w.fields = append(w.fields, CatalogField{
		Name:     name,
		ID:       id,
		Kind:     kindOf(inh),
		Value:    w.value(inh.value),
		ReadOnly: inh.flags&flagReadOnly != 0,
	})
	if w.debugMode {
		log.Printf("Catalogued field: %s (kind: %s, id: %s)", name, kindOf(inh), id)
	}
}

// value renders a V entry: strings as text, names as the button state
func (w *walker) value(obj types.Object) string {
	if obj == nil {
		return ""
	}
	if s, err := w.ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil); err == nil {
		return s
	}
	if n, err := w.ctx.DereferenceName(obj, model.V10, nil); err == nil {
		return string(n)
	}
	return ""
}

// fieldKids returns the kids that are fields themselves, i.e. carry a T entry
func (w *walker) fieldKids(d types.Dict) []types.Object {
	kidsObj, found := d.Find("Kids")
	if !found {
		return nil
	}
	kids, err := w.ctx.DereferenceArray(kidsObj)
	if err != nil {
		return nil
	}
	var out []types.Object
	for _, kid := range kids {
		kd, err := w.ctx.DereferenceDict(kid)
		if err != nil || kd == nil {
			continue
		}
		if _, hasT := kd.Find("T"); hasT {
			out = append(out, kid)
		}
	}
	return out
}

func kindOf(inh inherited) FieldKind {
	switch inh.fieldType {
	case "Tx":
		return KindText
	case "Btn":
		switch {
		case inh.flags&flagRadio != 0:
			return KindRadio
		case inh.flags&flagPushButton != 0:
			return KindButton
		default:
			return KindCheckbox
		}
	case "Ch":
		return KindChoice
	case "Sig":
		return KindSignature
	default:
		return KindUnknown
	}
}

package wrapper

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/a3tai/posesion-efectiva/internal/pdf/extraction"
)

// PDFCPULibrary implements PDFLibrary using pdfcpu
type PDFCPULibrary struct {
	debugMode bool
}

// NewPDFCPULibrary creates a new pdfcpu library wrapper
func NewPDFCPULibrary(debugMode bool) *PDFCPULibrary {
	return &PDFCPULibrary{debugMode: debugMode}
}

// GetLibraryType returns the library type
func (p *PDFCPULibrary) GetLibraryType() LibraryType {
	return LibraryPDFCPU
}

func configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Load parses a template and catalogs its form fields
func (p *PDFCPULibrary) Load(data []byte) (FormDocument, error) {
	ctx, err := api.ReadContext(bytes.NewReader(data), configuration())
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "load",
			Err:     fmt.Errorf("failed to read PDF context: %w", err),
		}
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "load",
			Err:     fmt.Errorf("failed to ensure page count: %w", err),
		}
	}

	catalog, err := extraction.NewCatalogExtractor(p.debugMode).FromContext(ctx)
	if err != nil {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "load", Err: err}
	}

	return &PDFCPUDocument{
		source:    data,
		pageCount: ctx.PageCount,
		catalog:   catalog,
		texts:     make(map[string]string),
		checks:    make(map[string]bool),
		debugMode: p.debugMode,
	}, nil
}

// CopyPage builds a document holding copies of one page of data
func (p *PDFCPULibrary) CopyPage(data []byte, page, copies int) ([]byte, error) {
	if page < 0 || copies < 1 {
		return nil, ErrInvalidPage
	}
	selection := make([]string, copies)
	for i := range selection {
		selection[i] = strconv.Itoa(page + 1)
	}

	var buf bytes.Buffer
	if err := api.Collect(bytes.NewReader(data), &buf, selection, configuration()); err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "copy_page",
			Err:     fmt.Errorf("failed to copy page %d: %w", page+1, err),
		}
	}
	return buf.Bytes(), nil
}

// Merge concatenates documents in order. A single document is returned as is.
func (p *PDFCPULibrary) Merge(docs ...[]byte) ([]byte, error) {
	switch len(docs) {
	case 0:
		return nil, ErrNoDocuments
	case 1:
		return docs[0], nil
	}

	readers := make([]io.ReadSeeker, len(docs))
	for i, d := range docs {
		readers[i] = bytes.NewReader(d)
	}
	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, configuration()); err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "merge",
			Err:     fmt.Errorf("failed to merge %d documents: %w", len(docs), err),
		}
	}
	return buf.Bytes(), nil
}

// PageCount returns the number of pages of a serialized document
func (p *PDFCPULibrary) PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), configuration())
	if err != nil {
		return 0, &WrapperError{Library: LibraryPDFCPU, Op: "page_count", Err: err}
	}
	return n, nil
}

// PDFCPUDocument collects assignments against the catalog of a template and
// applies them all at once through pdfcpu's form filler on Serialize.
type PDFCPUDocument struct {
	source    []byte
	pageCount int
	catalog   *extraction.Catalog
	texts     map[string]string
	checks    map[string]bool
	flatten   bool
	debugMode bool
}

// TrySetText implements FormFieldWriter
func (d *PDFCPUDocument) TrySetText(name, value string) bool {
	f, ok := d.catalog.Lookup(name)
	if !ok || f.Kind != extraction.KindText {
		return false
	}
	d.texts[name] = value
	return true
}

// TrySetCheckbox implements FormFieldWriter
func (d *PDFCPUDocument) TrySetCheckbox(name string, checked bool) bool {
	f, ok := d.catalog.Lookup(name)
	if !ok || f.Kind != extraction.KindCheckbox {
		return false
	}
	d.checks[name] = checked
	return true
}

// Flatten locks every text and checkbox field of the output
func (d *PDFCPUDocument) Flatten() {
	d.flatten = true
}

// PageCount returns the number of pages of the template
func (d *PDFCPUDocument) PageCount() int {
	return d.pageCount
}

// Catalog returns the form fields of the template
func (d *PDFCPUDocument) Catalog() *extraction.Catalog {
	return d.catalog
}

// formGroup is the JSON accepted by api.FillForm
type formGroup struct {
	Forms []form `json:"forms"`
}

type form struct {
	TextFields []textField `json:"textfield,omitempty"`
	CheckBoxes []checkBox  `json:"checkbox,omitempty"`
}

type textField struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Value  string `json:"value"`
	Locked bool   `json:"locked"`
}

type checkBox struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Value  bool   `json:"value"`
	Locked bool   `json:"locked"`
}

// fill builds the FillForm payload. Unassigned fields keep their current
// value and are only listed when the form is being flattened.
func (d *PDFCPUDocument) fill() form {
	var f form
	for _, field := range d.catalog.Fields() {
		switch field.Kind {
		case extraction.KindText:
			value, set := d.texts[field.Name]
			if !set && !d.flatten {
				continue
			}
			if !set {
				value = field.Value
			}
			f.TextFields = append(f.TextFields, textField{
				ID: field.ID, Name: field.Name, Value: value, Locked: d.flatten,
			})
		case extraction.KindCheckbox:
			checked, set := d.checks[field.Name]
			if !set && !d.flatten {
				continue
			}
			if !set {
				checked = field.Value != "" && field.Value != "Off"
			}
			f.CheckBoxes = append(f.CheckBoxes, checkBox{
				ID: field.ID, Name: field.Name, Value: checked, Locked: d.flatten,
			})
		}
	}
	return f
}

// Serialize writes the filled document
func (d *PDFCPUDocument) Serialize() ([]byte, error) {
	f := d.fill()
	if len(f.TextFields) == 0 && len(f.CheckBoxes) == 0 {
		return d.source, nil
	}

	payload, err := json.Marshal(formGroup{Forms: []form{f}})
	if err != nil {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "serialize", Err: err}
	}
	if d.debugMode {
		log.Printf("Filling %d text fields and %d checkboxes (locked: %t)",
			len(f.TextFields), len(f.CheckBoxes), d.flatten)
	}

	var buf bytes.Buffer
	if err := api.FillForm(bytes.NewReader(d.source), bytes.NewReader(payload), &buf, configuration()); err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "serialize",
			Err:     fmt.Errorf("failed to fill form: %w", err),
		}
	}
	return buf.Bytes(), nil
}

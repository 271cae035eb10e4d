package wrapper

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/posesion-efectiva/internal/pdf/extraction"
	"github.com/a3tai/posesion-efectiva/internal/pdf/pdftest"
)

func templateFields() []pdftest.Field {
	return []pdftest.Field{
		{Name: "RUT CAUSANTE"},
		{Name: "NOMBRE CAUSANTE"},
		{Name: "RUT HEREDERO.8.0", Page: 1},
		{Name: "VALOR ACTIVO 1.0", Page: 2},
		{Name: "Check Box104", Type: pdftest.Checkbox},
		{Name: "CEDENTE SI/NO.8.0", Type: pdftest.Checkbox, Page: 1},
	}
}

func reread(t *testing.T, data []byte) *extraction.Catalog {
	t.Helper()
	catalog, err := extraction.NewCatalogExtractor(false).FromReader(bytes.NewReader(data))
	require.NoError(t, err)
	return catalog
}

func TestPDFCPULibrary_Load(t *testing.T) {
	lib := NewPDFCPULibrary(false)
	assert.Equal(t, LibraryPDFCPU, lib.GetLibraryType())

	doc, err := lib.Load(pdftest.FormPDF(3, templateFields()))
	require.NoError(t, err)
	assert.Equal(t, 3, doc.PageCount())
	assert.Equal(t, len(templateFields()), doc.Catalog().Len())

	_, err = lib.Load([]byte("%PDF-1.7 garbage"))
	require.Error(t, err)
	var werr *WrapperError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, "load", werr.Op)
}

func TestPDFCPUDocument_TrySet(t *testing.T) {
	doc, err := NewPDFCPULibrary(false).Load(pdftest.FormPDF(3, templateFields()))
	require.NoError(t, err)

	tests := []struct {
		name  string
		set   func() bool
		found bool
	}{
		{"text", func() bool { return doc.TrySetText("RUT CAUSANTE", "12345678") }, true},
		{"nested text", func() bool { return doc.TrySetText("RUT HEREDERO.8.0", "1-9") }, true},
		{"unknown text", func() bool { return doc.TrySetText("RUT HEREDERO.8.1", "x") }, false},
		{"text on checkbox", func() bool { return doc.TrySetText("Check Box104", "x") }, false},
		{"checkbox", func() bool { return doc.TrySetCheckbox("Check Box104", true) }, true},
		{"checkbox on text", func() bool { return doc.TrySetCheckbox("RUT CAUSANTE", true) }, false},
		{"unknown checkbox", func() bool { return doc.TrySetCheckbox("Check Box999", true) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.found, tt.set())
		})
	}
}

func TestPDFCPUDocument_SerializeFilledAndLocked(t *testing.T) {
	doc, err := NewPDFCPULibrary(false).Load(pdftest.FormPDF(3, templateFields()))
	require.NoError(t, err)

	doc.TrySetText("RUT CAUSANTE", "12345678")
	doc.TrySetText("VALOR ACTIVO 1.0", "1.000.000")
	doc.TrySetCheckbox("Check Box104", true)
	doc.Flatten()

	data, err := doc.Serialize()
	require.NoError(t, err)

	catalog := reread(t, data)
	rut, ok := catalog.Lookup("RUT CAUSANTE")
	require.True(t, ok)
	assert.Equal(t, "12345678", rut.Value)
	assert.True(t, rut.ReadOnly)

	value, ok := catalog.Lookup("VALOR ACTIVO 1.0")
	require.True(t, ok)
	assert.Equal(t, "1.000.000", value.Value)

	box, ok := catalog.Lookup("Check Box104")
	require.True(t, ok)
	assert.NotEqual(t, "Off", box.Value)
	assert.True(t, box.ReadOnly)

	// untouched fields are locked too
	name, ok := catalog.Lookup("NOMBRE CAUSANTE")
	require.True(t, ok)
	assert.True(t, name.ReadOnly)
	assert.Empty(t, name.Value)
}

func TestPDFCPUDocument_SerializeWithoutAssignments(t *testing.T) {
	source := pdftest.FormPDF(1, templateFields())
	doc, err := NewPDFCPULibrary(false).Load(source)
	require.NoError(t, err)

	data, err := doc.Serialize()
	require.NoError(t, err)
	assert.Equal(t, source, data)

	plain := pdftest.PlainPDF(2)
	doc, err = NewPDFCPULibrary(false).Load(plain)
	require.NoError(t, err)
	doc.Flatten()
	data, err = doc.Serialize()
	require.NoError(t, err)
	assert.Equal(t, plain, data)
}

func TestPDFCPULibrary_CopyPageAndMerge(t *testing.T) {
	lib := NewPDFCPULibrary(false)
	template := pdftest.FormPDF(3, templateFields())

	copies, err := lib.CopyPage(template, 2, 2)
	require.NoError(t, err)
	n, err := lib.PageCount(copies)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	merged, err := lib.Merge(template, copies, pdftest.PlainPDF(1))
	require.NoError(t, err)
	n, err = lib.PageCount(merged)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	single, err := lib.Merge(template)
	require.NoError(t, err)
	assert.Equal(t, template, single)

	_, err = lib.Merge()
	assert.ErrorIs(t, err, ErrNoDocuments)

	_, err = lib.CopyPage(template, -1, 1)
	assert.ErrorIs(t, err, ErrInvalidPage)
	_, err = lib.CopyPage(template, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestPDFCPULibrary_PageCountInvalid(t *testing.T) {
	_, err := NewPDFCPULibrary(false).PageCount([]byte("nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page_count")
}

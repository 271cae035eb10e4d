package extraction

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/posesion-efectiva/internal/pdf/pdftest"
)

func TestCatalogExtractor_QualifiedNames(t *testing.T) {
	fields := []pdftest.Field{
		{Name: "RUT CAUSANTE"},
		{Name: "NÚMERO ÚNICO"},
		{Name: "RUT HEREDERO.0"},
		{Name: "RUT HEREDERO.7"},
		{Name: "RUT HEREDERO.8.0"},
		{Name: "RUT HEREDERO.8.11", Page: 1},
		{Name: "CEDENTE SI/NO.8.3", Type: pdftest.Checkbox},
		{Name: "Check Box104", Type: pdftest.Checkbox},
	}
	data := pdftest.FormPDF(3, fields)

	catalog, err := NewCatalogExtractor(false).FromReader(bytes.NewReader(data))
	require.NoError(t, err)

	names := make([]string, 0, catalog.Len())
	for _, f := range catalog.Fields() {
		names = append(names, f.Name)
		assert.NotEmpty(t, f.ID, f.Name)
		assert.False(t, f.ReadOnly, f.Name)
	}
	assert.Equal(t, pdftest.Names(fields), names)

	// intermediate nodes are not fields
	_, ok := catalog.Lookup("RUT HEREDERO")
	assert.False(t, ok)
	_, ok = catalog.Lookup("RUT HEREDERO.8")
	assert.False(t, ok)

	f, ok := catalog.Lookup("RUT HEREDERO.8.11")
	require.True(t, ok)
	assert.Equal(t, KindText, f.Kind)

	f, ok = catalog.Lookup("CEDENTE SI/NO.8.3")
	require.True(t, ok)
	assert.Equal(t, KindCheckbox, f.Kind)
	assert.Equal(t, "Off", f.Value)

	assert.Equal(t, []string{"MISSING", "RUT HEREDERO.9"},
		catalog.Missing([]string{"RUT CAUSANTE", "RUT HEREDERO.9", "MISSING"}))
}

func TestCatalogExtractor_NoAcroForm(t *testing.T) {
	catalog, err := NewCatalogExtractor(true).FromReader(bytes.NewReader(pdftest.PlainPDF(2)))
	require.NoError(t, err)
	assert.Equal(t, 0, catalog.Len())
	assert.Empty(t, catalog.Fields())
}

func TestCatalogExtractor_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "template.pdf")
	require.NoError(t, os.WriteFile(path, pdftest.FormPDF(1, pdftest.TextFields("A", "B.0")), 0o644))

	catalog, err := NewCatalogExtractor(false).FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Len())

	_, err = NewCatalogExtractor(false).FromFile(filepath.Join(dir, "missing.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open PDF file")
}

func TestCatalogExtractor_InvalidPDF(t *testing.T) {
	_, err := NewCatalogExtractor(false).FromReader(bytes.NewReader([]byte("not a pdf")))
	require.Error(t, err)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		inh  inherited
		want FieldKind
	}{
		{inherited{fieldType: "Tx"}, KindText},
		{inherited{fieldType: "Btn"}, KindCheckbox},
		{inherited{fieldType: "Btn", flags: flagRadio}, KindRadio},
		{inherited{fieldType: "Btn", flags: flagPushButton}, KindButton},
		{inherited{fieldType: "Ch"}, KindChoice},
		{inherited{fieldType: "Sig"}, KindSignature},
		{inherited{}, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, kindOf(tt.inh))
		})
	}
}

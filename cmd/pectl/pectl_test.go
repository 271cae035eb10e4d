package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/a3tai/posesion-efectiva/internal/inventory"
	"github.com/a3tai/posesion-efectiva/internal/pdf"
	"github.com/a3tai/posesion-efectiva/internal/pdf/pdftest"
)

const caseJSON = `{
	"causante": {"nombres": "Ana", "primer_apellido": "Soto", "rut": "11.111.111-1"},
	"bienes_raices": [{"valoracion": "85000000"}],
	"vehiculos": [{"ppu": "AB1234", "valoracion": "5000000"}]
}`

// execute runs pectl with args and returns what it printed
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTemplate(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "template.pdf")
	fields := []pdftest.Field{
		{Name: "RUT CAUSANTE", Type: pdftest.Text},
		{Name: "PRIMER APELLIDO CAUSANTE", Type: pdftest.Text},
		{Name: "TOTAL BIENES RAICES", Type: pdftest.Text, Page: 2},
	}
	require.NoError(t, os.WriteFile(path, pdftest.FormPDF(3, fields), 0o644))
	return path
}

func writeCase(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "caso.json")
	require.NoError(t, os.WriteFile(path, []byte(caseJSON), 0o644))
	return path
}

func TestRootHelp(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)
	for _, name := range []string{"fill", "fields", "presumption", "inventory", "version"} {
		assert.Contains(t, out, name)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pectl dev")
	assert.Contains(t, out, "Schema: TIPO_FORMULARIO-1")
	assert.Contains(t, out, "Go Version:")
}

func TestPresumption(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"plain", "1000000", "20% of $1.000.000: $200.000"},
		{"rounds half up", "1000003", "20% of $1.000.003: $200.001"},
		{"separators", "85.000.000", "20% of $85.000.000: $17.000.000"},
		{"peso sign", "$1.000.000", "20% of $1.000.000: $200.000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "presumption", tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}

	_, err := execute(t, "presumption", "abc")
	assert.ErrorContains(t, err, "invalid value")

	_, err = execute(t, "presumption")
	assert.Error(t, err)
}

func TestInvalidConfiguration(t *testing.T) {
	_, err := execute(t, "presumption", "--overflow=bogus", "100")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	_, err = execute(t, "presumption", "--loglevel=loud", "100")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestFill(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir)
	output := filepath.Join(dir, "out.pdf")

	out, err := execute(t, "fill", writeCase(t, dir), "--template", template, "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+output)
	assert.Contains(t, out, "Pages:    3 (0 added, replicate)")
	assert.Contains(t, out, "$85.000.000")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestFillErrors(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir)

	_, err := execute(t, "fill", filepath.Join(dir, "absent.json"), "--template", template)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"causante": `), 0o644))
	_, err = execute(t, "fill", bad, "--template", template)
	assert.Error(t, err)

	_, err = execute(t, "fill", writeCase(t, dir), "--template", filepath.Join(dir, "absent.pdf"),
		"-o", filepath.Join(dir, "out.pdf"))
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "out.pdf"))
}

func TestFields(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir)

	out, err := execute(t, "fields", "--template", template)
	require.NoError(t, err)
	assert.Contains(t, out, "Pages:    3")
	assert.Contains(t, out, "Fields:   3")
	assert.Contains(t, out, "Missing text fields")
	assert.NotContains(t, out, "Every vocabulary name is present.")

	out, err = execute(t, "fields", "--template", template, "--json")
	require.NoError(t, err)
	var report pdf.FieldReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Len(t, report.Fields, 3)
	assert.NotContains(t, report.MissingFields, "RUT CAUSANTE")
	assert.False(t, report.Complete())

	_, err = execute(t, "fields", "--template", template, "--strict")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "template lacks"))
}

func TestInventory(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "inventario.xlsx")

	out, err := execute(t, "inventory", writeCase(t, dir), "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+output)

	f, err := excelize.OpenFile(output)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(inventory.InventorySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "PPU AB1234", rows[2][2])
}

func TestReadCaseStdin(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "inventario.xlsx")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(caseJSON))
	cmd.SetArgs([]string{"inventory", "-", "-o", output})
	require.NoError(t, cmd.Execute())
	assert.FileExists(t, output)
}

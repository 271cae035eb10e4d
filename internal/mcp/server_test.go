package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/posesion-efectiva/internal/config"
	"github.com/a3tai/posesion-efectiva/internal/drafts"
	"github.com/a3tai/posesion-efectiva/internal/overflow"
	"github.com/a3tai/posesion-efectiva/internal/pdf"
	"github.com/a3tai/posesion-efectiva/internal/pdf/pdftest"
)

var templateFields = []pdftest.Field{
	{Name: "RUT CAUSANTE"},
	{Name: "PRIMER APELLIDO CAUSANTE"},
	{Name: "TOTAL BIENES RAICES", Page: 2},
	{Name: "Check Box104", Type: pdftest.Checkbox, Page: 1},
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Mode = config.ModeStdio
	cfg.TemplatePath = filepath.Join(dir, "template.pdf")
	cfg.DraftsDirectory = filepath.Join(dir, "borradores")
	cfg.OutputDirectory = filepath.Join(dir, "salidas")
	require.NoError(t, os.WriteFile(cfg.TemplatePath, pdftest.FormPDF(3, templateFields), 0o644))
	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.EnsureDirectories())

	svc, err := pdf.NewService(pdf.Options{
		TemplatePath: cfg.TemplatePath,
		Strategy:     overflow.Annex,
		MaxFileSize:  cfg.MaxFileSize,
	})
	require.NoError(t, err)
	store, err := drafts.NewStore(cfg.DraftsDirectory, false)
	require.NoError(t, err)

	s, err := NewServer(cfg, svc, store)
	require.NoError(t, err)
	return s
}

func call(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestNewServer(t *testing.T) {
	s := newTestServer(t)
	assert.NotNil(t, s.mcpServer)

	_, err := NewServer(nil, s.pdfService, s.drafts)
	assert.Error(t, err)
	_, err = NewServer(s.config, nil, s.drafts)
	assert.Error(t, err)
	_, err = NewServer(s.config, s.pdfService, nil)
	assert.Error(t, err)
}

func TestServer_HandleGeneratePDF(t *testing.T) {
	s := newTestServer(t)

	realEstate := make([]interface{}, 6)
	for i := range realEstate {
		realEstate[i] = map[string]interface{}{"valoracion": 1000000}
	}
	tests := []struct {
		name     string
		args     map[string]interface{}
		wantFile string
	}{
		{
			name: "object argument",
			args: map[string]interface{}{
				"case": map[string]interface{}{
					"causante":      map[string]interface{}{"primer_apellido": "Soto"},
					"bienes_raices": realEstate,
				},
				"filename": "../caso-soto",
			},
			wantFile: "caso-soto.pdf",
		},
		{
			name:     "json text argument",
			args:     map[string]interface{}{"case": `{"bienes_raices": [{"valoracion": "5"}]}`, "filename": "texto.PDF"},
			wantFile: "texto.PDF",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleGeneratePDF(context.Background(), call(tt.args))
			require.NoError(t, err)
			text := extractTextFromResult(result)
			require.False(t, result.IsError, text)

			path := filepath.Join(s.config.OutputDirectory, tt.wantFile)
			assert.Contains(t, text, "Generated PDF: "+path)
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(data), "%PDF"))
		})
	}

	result, err := s.handleGeneratePDF(context.Background(), call(map[string]interface{}{
		"case": map[string]interface{}{"causante": map[string]interface{}{"primer_apellido": "Rojas"}},
	}))
	require.NoError(t, err)
	assert.Contains(t, extractTextFromResult(result), "PE_Rojas_")

	// the default name stays inside the output directory whatever the surname
	result, err = s.handleGeneratePDF(context.Background(), call(map[string]interface{}{
		"case": map[string]interface{}{"causante": map[string]interface{}{"primer_apellido": "x/../../../tmp/pwn"}},
	}))
	require.NoError(t, err)
	text := extractTextFromResult(result)
	require.False(t, result.IsError, text)
	matches, err := filepath.Glob(filepath.Join(s.config.OutputDirectory, "PE_x_tmp_pwn_*.pdf"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Contains(t, text, "Generated PDF: "+s.config.OutputDirectory+string(filepath.Separator)+"PE_x_tmp_pwn_")
}

func TestServer_HandleGeneratePDFAnnexPages(t *testing.T) {
	s := newTestServer(t)

	entries := make([]interface{}, 6)
	for i := range entries {
		entries[i] = map[string]interface{}{"valoracion": "1000000"}
	}
	result, err := s.handleGeneratePDF(context.Background(), call(map[string]interface{}{
		"case": map[string]interface{}{"bienes_raices": entries},
	}))
	require.NoError(t, err)
	text := extractTextFromResult(result)
	assert.Contains(t, text, "Pages: 4 (1 added by the annex strategy)")
	assert.Contains(t, text, "Bienes Raíces: $6.000.000")
}

func TestServer_HandleComputeTotals(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleComputeTotals(context.Background(), call(map[string]interface{}{
		"case": `{
			"bienes_raices": [{"valoracion": "1000000"}],
			"presuncion_20": true,
			"pasivos": [{"valoracion": "1000"}, {"valoracion": "1000"}, {"valoracion": "1000"}, {"valoracion": "1000"}, {"valoracion": "1000"}]
		}`,
	}))
	require.NoError(t, err)
	text := extractTextFromResult(result)
	require.False(t, result.IsError, text)

	assert.Contains(t, text, "Menaje: $200.000")
	assert.Contains(t, text, "Total assets: $1.200.000")
	assert.Contains(t, text, "Net estate: $1.195.000")
	assert.Contains(t, text, "Entries beyond the form's slots: 1")
	assert.Contains(t, text, "Pasivos: 1 (capacity 4)")

	result, err = s.handleComputeTotals(context.Background(), call(map[string]interface{}{"case": map[string]interface{}{}}))
	require.NoError(t, err)
	assert.Contains(t, extractTextFromResult(result), "Every entry fits the form.")
}

func TestServer_HandleCalculatePresumption(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		value interface{}
		want  string
	}{
		{float64(1000003), "$200.001"},
		{"1000000", "$200.000"},
		{"", "$0"},
	}
	for _, tt := range tests {
		result, err := s.handleCalculatePresumption(context.Background(), call(map[string]interface{}{"valor_primer_br": tt.value}))
		require.NoError(t, err)
		assert.Contains(t, extractTextFromResult(result), "): "+tt.want+"\n")
	}
}

func TestServer_HandleTemplateFields(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleTemplateFields(context.Background(), call(nil))
	require.NoError(t, err)
	text := extractTextFromResult(result)
	require.False(t, result.IsError, text)
	assert.Contains(t, text, "Pages: 3")
	assert.Contains(t, text, "Form fields: 4")
	assert.Contains(t, text, "- NOMBRE CAUSANTE\n")
	assert.NotContains(t, text, "- RUT CAUSANTE\n")
}

func TestServer_DraftTools(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleListDrafts(ctx, call(nil))
	require.NoError(t, err)
	assert.Contains(t, extractTextFromResult(result), "No drafts")

	result, err = s.handleSaveDraft(ctx, call(map[string]interface{}{
		"case":   `{"causante": {"nombres": "Ana", "primer_apellido": "Soto", "rut": "1-9"}}`,
		"nombre": "caso ana",
	}))
	require.NoError(t, err)
	text := extractTextFromResult(result)
	require.False(t, result.IsError, text)
	filename := strings.TrimSpace(strings.TrimPrefix(text, "Draft saved: "))
	assert.True(t, strings.HasPrefix(filename, "caso_ana_"), filename)

	result, err = s.handleListDrafts(ctx, call(nil))
	require.NoError(t, err)
	text = extractTextFromResult(result)
	assert.Contains(t, text, "Found 1 draft(s)")
	assert.Contains(t, text, "1. "+filename)
	assert.Contains(t, text, "Causante: Ana Soto (1-9)")

	result, err = s.handleLoadDraft(ctx, call(map[string]interface{}{"filename": filename}))
	require.NoError(t, err)
	assert.Equal(t, `{"causante": {"nombres": "Ana", "primer_apellido": "Soto", "rut": "1-9"}}`, extractTextFromResult(result))

	result, err = s.handleDeleteDraft(ctx, call(map[string]interface{}{"filename": filename}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	result, err = s.handleLoadDraft(ctx, call(map[string]interface{}{"filename": filename}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractTextFromResult(result), "Borrador no encontrado")
}

func TestServer_InvalidArguments(t *testing.T) {
	s := newTestServer(t)
	request := call(map[string]interface{}{})

	handlers := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
	}{
		{"pe_generate_pdf", s.handleGeneratePDF},
		{"pe_compute_totals", s.handleComputeTotals},
		{"pe_calculate_presumption", s.handleCalculatePresumption},
		{"pe_save_draft", s.handleSaveDraft},
		{"pe_load_draft", s.handleLoadDraft},
		{"pe_delete_draft", s.handleDeleteDraft},
	}
	for _, h := range handlers {
		t.Run(h.name, func(t *testing.T) {
			result, err := h.handler(context.Background(), request)
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}

	result, err := s.handleComputeTotals(context.Background(), call(map[string]interface{}{"case": "{nope"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

// Helper function to extract text from a CallToolResult
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}

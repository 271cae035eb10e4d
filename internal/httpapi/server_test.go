package httpapi

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/xuri/excelize/v2"

	"github.com/a3tai/posesion-efectiva/internal/config"
	"github.com/a3tai/posesion-efectiva/internal/drafts"
	"github.com/a3tai/posesion-efectiva/internal/inventory"
	"github.com/a3tai/posesion-efectiva/internal/overflow"
	"github.com/a3tai/posesion-efectiva/internal/pdf"
	"github.com/a3tai/posesion-efectiva/internal/pdf/pdftest"
)

const indexHTML = "<!doctype html><title>Posesión Efectiva</title>"

var templateFields = []pdftest.Field{
	{Name: "RUT CAUSANTE"},
	{Name: "PRIMER APELLIDO CAUSANTE"},
	{Name: "TOTAL BIENES RAICES", Page: 2},
}

func newTestServer(t *testing.T, templatePath string) *Server {
	t.Helper()
	dir := t.TempDir()

	if templatePath == "" {
		templatePath = filepath.Join(dir, "template.pdf")
		require.NoError(t, os.WriteFile(templatePath, pdftest.FormPDF(3, templateFields), 0o644))
	}
	static := filepath.Join(dir, "public")
	require.NoError(t, os.Mkdir(static, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte(indexHTML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(static, "app.js"), []byte("console.log(1)"), 0o644))

	cfg := config.DefaultConfig()
	cfg.TemplatePath = templatePath
	cfg.StaticDirectory = static
	cfg.DraftsDirectory = filepath.Join(dir, "borradores")

	svc, err := pdf.NewService(pdf.Options{
		TemplatePath: cfg.TemplatePath,
		Strategy:     overflow.Replicate,
		MaxFileSize:  cfg.MaxFileSize,
	})
	require.NoError(t, err)
	store, err := drafts.NewStore(cfg.DraftsDirectory, false)
	require.NoError(t, err)

	s, err := NewServer(cfg, svc, store)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC) }
	return s
}

func do(s *Server, method, uri, body string, headers ...string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if body != "" {
		req.SetBodyString(body)
	}

	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	s.Handler()(&ctx)
	return &ctx
}

func decodeBody[T any](t *testing.T, ctx *fasthttp.RequestCtx) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &v), string(ctx.Response.Body()))
	return v
}

func TestNewServer(t *testing.T) {
	cfg := config.DefaultConfig()
	_, err := NewServer(cfg, nil, nil)
	assert.Error(t, err)
	_, err = NewServer(nil, nil, nil)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "")

	ctx := do(s, "GET", "/api/health", "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	body := decodeBody[healthResponse](t, ctx)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "replicate", body.Overflow)
	assert.NotEmpty(t, body.SchemaVersion)
	assert.Len(t, string(ctx.Response.Header.Peek(RequestIDHeader)), 36)

	ctx = do(s, "GET", "/api/health", "", RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", string(ctx.Response.Header.Peek(RequestIDHeader)))
}

func TestRouting(t *testing.T) {
	s := newTestServer(t, "")

	tests := []struct {
		name   string
		method string
		uri    string
		status int
	}{
		{"wrong method", "GET", "/api/generar-pdf", fasthttp.StatusMethodNotAllowed},
		{"wrong method on draft", "POST", "/api/borrador/x.json", fasthttp.StatusMethodNotAllowed},
		{"unknown api route", "GET", "/api/nada", fasthttp.StatusNotFound},
		{"missing static file", "GET", "/nada.css", fasthttp.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := do(s, tt.method, tt.uri, "")
			assert.Equal(t, tt.status, ctx.Response.StatusCode())
		})
	}
}

func TestStatic(t *testing.T) {
	s := newTestServer(t, "")

	ctx := do(s, "GET", "/", "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, indexHTML, string(ctx.Response.Body()))

	ctx = do(s, "GET", "/app.js", "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "console.log(1)", string(ctx.Response.Body()))
}

func TestGeneratePDF(t *testing.T) {
	s := newTestServer(t, "")

	ctx := do(s, "POST", "/api/generar-pdf", `{
		"causante": {"rut": "11.111.111-1", "primer_apellido": "Núñez"},
		"bienes_raices": [{"valoracion": "1000000"}]
	}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))
	assert.Equal(t, "application/pdf", string(ctx.Response.Header.ContentType()))
	assert.True(t, strings.HasPrefix(
		string(ctx.Response.Header.Peek(fasthttp.HeaderContentDisposition)),
		`attachment; filename="PE_Nunez_`))
	assert.Equal(t, "3", string(ctx.Response.Header.Peek("X-Pages")))
	assert.True(t, bytes.HasPrefix(ctx.Response.Body(), []byte("%PDF")))
}

func TestGeneratePDFErrors(t *testing.T) {
	t.Run("invalid body", func(t *testing.T) {
		ctx := do(newTestServer(t, ""), "POST", "/api/generar-pdf", `{"causante": `)
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
		body := decodeBody[errorResponse](t, ctx)
		assert.Equal(t, "Error al generar el PDF", body.Error)
		assert.NotEmpty(t, body.Details)
	})

	t.Run("sheet count over the limit", func(t *testing.T) {
		ctx := do(newTestServer(t, ""), "POST", "/api/generar-pdf", `{"inventario_hojas": "9223372036854775807"}`)
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
		body := decodeBody[errorResponse](t, ctx)
		assert.Equal(t, "Error al generar el PDF", body.Error)
		assert.Contains(t, body.Details, "inventario_hojas")
	})

	t.Run("missing template", func(t *testing.T) {
		s := newTestServer(t, filepath.Join(t.TempDir(), "none.pdf"))
		ctx := do(s, "POST", "/api/generar-pdf", `{}`)
		assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())
		assert.Equal(t, "application/json; charset=utf-8", string(ctx.Response.Header.ContentType()))
		body := decodeBody[errorResponse](t, ctx)
		assert.Equal(t, "Error al generar el PDF", body.Error)
		assert.NotEmpty(t, body.Details)
	})
}

func TestCalculatePresumption(t *testing.T) {
	s := newTestServer(t, "")

	tests := []struct {
		name  string
		body  string
		value int64
		want  int64
	}{
		{"string", `{"valor_primer_br": "1000000"}`, 1000000, 200000},
		{"number rounds up", `{"valor_primer_br": 1000003}`, 1000003, 200001},
		{"number rounds down", `{"valor_primer_br": 1000002}`, 1000002, 200000},
		{"not a number", `{"valor_primer_br": "abc"}`, 0, 0},
		{"absent", `{}`, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := do(s, "POST", "/api/calcular-presuncion", tt.body)
			require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
			body := decodeBody[presumptionResponse](t, ctx)
			assert.Equal(t, tt.want, body.Presumption)
			assert.Equal(t, tt.value, body.FirstRealEstate)
		})
	}

	ctx := do(s, "POST", "/api/calcular-presuncion", `nope`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestExportInventory(t *testing.T) {
	s := newTestServer(t, "")

	ctx := do(s, "POST", "/api/exportar-inventario", `{
		"causante": {"primer_apellido": "Soto"},
		"vehiculos": [{"ppu": "AB1234", "valoracion": "5000000"}]
	}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))
	assert.Equal(t, inventory.ContentType, string(ctx.Response.Header.ContentType()))
	assert.Equal(t, `attachment; filename="Inventario_Soto_2024-03-07.xlsx"`,
		string(ctx.Response.Header.Peek(fasthttp.HeaderContentDisposition)))

	f, err := excelize.OpenReader(bytes.NewReader(ctx.Response.Body()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(inventory.InventorySheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "PPU AB1234", rows[1][2])
}

func TestDraftLifecycle(t *testing.T) {
	s := newTestServer(t, "")

	ctx := do(s, "GET", "/api/borradores", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "[]", string(ctx.Response.Body()))

	data := `{"causante": {"nombres": "Ana", "primer_apellido": "Soto", "rut": "1-9"}}`
	ctx = do(s, "POST", "/api/guardar-borrador", `{"data": `+data+`, "nombre": "Caso Soto"}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))
	saved := decodeBody[drafts.SaveResult](t, ctx)
	assert.True(t, saved.Success)
	assert.True(t, strings.HasPrefix(saved.Filename, "Caso_Soto_"))

	ctx = do(s, "GET", "/api/borradores", "")
	list := decodeBody[[]drafts.Summary](t, ctx)
	require.Len(t, list, 1)
	assert.Equal(t, saved.Filename, list[0].Filename)
	assert.Equal(t, "Ana Soto", list[0].Decedent)
	assert.Equal(t, "1-9", list[0].DecedentRUT)

	ctx = do(s, "GET", "/api/cargar-borrador/"+saved.Filename, "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, data, string(ctx.Response.Body()))

	ctx = do(s, "DELETE", "/api/borrador/"+saved.Filename, "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"success": true}`, string(ctx.Response.Body()))

	ctx = do(s, "GET", "/api/cargar-borrador/"+saved.Filename, "")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"error": "Borrador no encontrado"}`, string(ctx.Response.Body()))

	ctx = do(s, "DELETE", "/api/borrador/"+saved.Filename, "")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestSaveDraftBareCase(t *testing.T) {
	s := newTestServer(t, "")

	ctx := do(s, "POST", "/api/guardar-borrador", `{"causante": {"nombres": "José", "primer_apellido": "Pérez"}}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	saved := decodeBody[drafts.SaveResult](t, ctx)
	assert.True(t, strings.HasPrefix(saved.Filename, "borrador_Perez_Jose_"))

	ctx = do(s, "POST", "/api/guardar-borrador", `{"data": `)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	body := decodeBody[errorResponse](t, ctx)
	assert.Equal(t, "Error al guardar borrador", body.Error)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, fasthttp.StatusInternalServerError, statusOf(os.ErrNotExist))
}

package httpapi

import (
	"bytes"
	"fmt"
	"log"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"github.com/a3tai/posesion-efectiva/internal/drafts"
	"github.com/a3tai/posesion-efectiva/internal/errors"
	"github.com/a3tai/posesion-efectiva/internal/inventory"
	"github.com/a3tai/posesion-efectiva/internal/mapper"
	"github.com/a3tai/posesion-efectiva/internal/model"
)

// User-facing operation messages owned by this surface
const (
	opGenerate    = "Error al generar el PDF"
	opPresumption = "Error al calcular la presunción"
	opInventory   = "Error al exportar el inventario"
)

// errorResponse is the JSON error envelope
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// presumptionRequest is the body of the standalone presumption calculation
type presumptionRequest struct {
	FirstRealEstate model.Text `json:"valor_primer_br"`
}

type presumptionResponse struct {
	Presumption     int64 `json:"presuncion"`
	FirstRealEstate int64 `json:"valor_primer_br"`
}

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	SchemaVersion string `json:"schema_version"`
	Overflow      string `json:"overflow"`
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = fasthttp.StatusInternalServerError
		body = []byte(`{"error":"Error interno"}`)
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetBody(body)
}

// statusOf maps the error taxonomy onto HTTP statuses
func statusOf(err error) int {
	switch errors.KindOf(err) {
	case errors.KindInvalidInput:
		return fasthttp.StatusBadRequest
	case errors.KindNotFound:
		return fasthttp.StatusNotFound
	default:
		return fasthttp.StatusInternalServerError
	}
}

// writeError sends the {error, details} envelope for err. fallbackOp names
// the operation when err carries none.
func writeError(ctx *fasthttp.RequestCtx, err error, fallbackOp string) {
	status := statusOf(err)
	message, details := errors.Split(err, fallbackOp)
	if status == fasthttp.StatusInternalServerError {
		log.Printf("[%s] %s: %v", requestID(ctx), message, err)
	}
	writeJSON(ctx, status, errorResponse{Error: message, Details: details})
}

// decodeCase reads the request body as a CaseInput
func decodeCase(ctx *fasthttp.RequestCtx, op string) (*model.CaseInput, bool) {
	in, err := model.Decode(ctx.PostBody())
	if err != nil {
		writeError(ctx, errors.New(errors.KindInvalidInput, op, err), op)
		return nil, false
	}
	return in, true
}

func attachment(ctx *fasthttp.RequestCtx, contentType, filename string) {
	ctx.SetContentType(contentType)
	ctx.Response.Header.Set(fasthttp.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, healthResponse{
		Status:        "ok",
		Version:       s.config.Version,
		SchemaVersion: s.service.Mapper().Schema().Version,
		Overflow:      s.service.Strategy().String(),
	})
}

func (s *Server) handleGenerate(ctx *fasthttp.RequestCtx) {
	in, ok := decodeCase(ctx, opGenerate)
	if !ok {
		return
	}

	result, err := s.service.FillDocument(s.base, in)
	if err != nil {
		writeError(ctx, err, opGenerate)
		return
	}
	if s.config.IsDebug() {
		log.Printf("[%s] Generated %s: %d pages (%d extra), %d bytes, %s",
			requestID(ctx), result.Filename, result.Pages, result.ExtraPages, result.Size, result.Missing.Summary())
	}

	attachment(ctx, "application/pdf", result.Filename)
	ctx.Response.Header.Set("X-Pages", fmt.Sprint(result.Pages))
	ctx.Response.Header.Set("X-Missing-Fields", fmt.Sprint(result.Missing.Count()))
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(result.PDF)
}

func (s *Server) handlePresumption(ctx *fasthttp.RequestCtx) {
	var req presumptionRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, errors.New(errors.KindInvalidInput, opPresumption, err), opPresumption)
		return
	}
	value := req.FirstRealEstate.Amount()
	writeJSON(ctx, fasthttp.StatusOK, presumptionResponse{
		Presumption:     mapper.PresumptionAmount(value, s.service.Mapper().Schema().Presumption.Rate),
		FirstRealEstate: value,
	})
}

func (s *Server) handleExportInventory(ctx *fasthttp.RequestCtx) {
	in, ok := decodeCase(ctx, opInventory)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := s.exporter.Write(&buf, in); err != nil {
		writeError(ctx, errors.New(errors.KindSerialization, opInventory, err), opInventory)
		return
	}
	attachment(ctx, inventory.ContentType, inventory.Filename(in, s.now()))
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(buf.Bytes())
}

func (s *Server) handleSaveDraft(ctx *fasthttp.RequestCtx) {
	data, label, err := drafts.Unwrap(ctx.PostBody())
	if err != nil {
		writeError(ctx, errors.New(errors.KindInvalidInput, drafts.OpSave, err), drafts.OpSave)
		return
	}
	result, err := s.drafts.Save(data, label)
	if err != nil {
		writeError(ctx, err, drafts.OpSave)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, result)
}

func (s *Server) handleListDrafts(ctx *fasthttp.RequestCtx) {
	list, err := s.drafts.List()
	if err != nil {
		writeError(ctx, err, drafts.OpList)
		return
	}
	if list == nil {
		list = []drafts.Summary{}
	}
	writeJSON(ctx, fasthttp.StatusOK, list)
}

func (s *Server) handleLoadDraft(ctx *fasthttp.RequestCtx, name string) {
	data, err := s.drafts.Load(name)
	if err != nil {
		writeError(ctx, err, drafts.OpLoad)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetBody(data)
}

func (s *Server) handleDeleteDraft(ctx *fasthttp.RequestCtx, name string) {
	if err := s.drafts.Delete(name); err != nil {
		writeError(ctx, err, drafts.OpDelete)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, map[string]bool{"success": true})
}

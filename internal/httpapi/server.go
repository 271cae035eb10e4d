// Package httpapi is the REST surface of the declaration service: document
// generation, the standalone presumption calculation, inventory export, draft
// storage and the static front-end.
package httpapi

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/a3tai/posesion-efectiva/internal/config"
	"github.com/a3tai/posesion-efectiva/internal/drafts"
	"github.com/a3tai/posesion-efectiva/internal/inventory"
	"github.com/a3tai/posesion-efectiva/internal/pdf"
)

// RequestIDHeader carries the per-request id, echoed back when the client
// sends one
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "requestID"

// Route prefixes taking a draft filename
const (
	loadDraftPrefix   = "/api/cargar-borrador/"
	deleteDraftPrefix = "/api/borrador/"
)

// Server serves the HTTP API
type Server struct {
	config   *config.Config
	service  *pdf.Service
	drafts   *drafts.Store
	exporter *inventory.Exporter
	static   fasthttp.RequestHandler
	// base is the context of long-running work; it is cancelled on shutdown
	base context.Context
	now  func() time.Time
}

// NewServer creates the HTTP API over a document service and a draft store
func NewServer(cfg *config.Config, service *pdf.Service, store *drafts.Store) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("document service cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("draft store cannot be nil")
	}

	fs := &fasthttp.FS{
		Root:               cfg.StaticDirectory,
		IndexNames:         []string{"index.html"},
		GenerateIndexPages: false,
		AcceptByteRange:    true,
	}

	return &Server{
		config:   cfg,
		service:  service,
		drafts:   store,
		exporter: inventory.NewExporter(service.Mapper()),
		static:   fs.NewRequestHandler(),
		base:     context.Background(),
		now:      time.Now,
	}, nil
}

// Handler returns the request handler with request ids applied
func (s *Server) Handler() fasthttp.RequestHandler {
	return s.withRequestID(s.route)
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())

	switch {
	case path == "/api/health":
		s.only(ctx, fasthttp.MethodGet, s.handleHealth)
	case path == "/api/generar-pdf":
		s.only(ctx, fasthttp.MethodPost, s.handleGenerate)
	case path == "/api/calcular-presuncion":
		s.only(ctx, fasthttp.MethodPost, s.handlePresumption)
	case path == "/api/exportar-inventario":
		s.only(ctx, fasthttp.MethodPost, s.handleExportInventory)
	case path == "/api/guardar-borrador":
		s.only(ctx, fasthttp.MethodPost, s.handleSaveDraft)
	case path == "/api/borradores":
		s.only(ctx, fasthttp.MethodGet, s.handleListDrafts)
	case strings.HasPrefix(path, loadDraftPrefix):
		s.only(ctx, fasthttp.MethodGet, func(ctx *fasthttp.RequestCtx) {
			s.handleLoadDraft(ctx, strings.TrimPrefix(path, loadDraftPrefix))
		})
	case strings.HasPrefix(path, deleteDraftPrefix):
		s.only(ctx, fasthttp.MethodDelete, func(ctx *fasthttp.RequestCtx) {
			s.handleDeleteDraft(ctx, strings.TrimPrefix(path, deleteDraftPrefix))
		})
	case strings.HasPrefix(path, "/api/"):
		writeJSON(ctx, fasthttp.StatusNotFound, errorResponse{Error: "Ruta no encontrada"})
	default:
		s.static(ctx)
	}
}

// only runs h when the request uses method
func (s *Server) only(ctx *fasthttp.RequestCtx, method string, h fasthttp.RequestHandler) {
	if string(ctx.Method()) != method {
		ctx.Response.Header.Set(fasthttp.HeaderAllow, method)
		writeJSON(ctx, fasthttp.StatusMethodNotAllowed, errorResponse{Error: "Método no permitido"})
		return
	}
	h(ctx)
}

// withRequestID tags the request with an id and logs one line per request
func (s *Server) withRequestID(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		id := string(ctx.Request.Header.Peek(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		ctx.SetUserValue(requestIDKey, id)
		ctx.Response.Header.Set(RequestIDHeader, id)

		next(ctx)

		status := ctx.Response.StatusCode()
		if s.config.IsDebug() || status >= fasthttp.StatusInternalServerError {
			log.Printf("[%s] %s %s %d %s", id, ctx.Method(), ctx.Path(), status, time.Since(start).Round(time.Millisecond))
		}
	}
}

// requestID returns the id assigned by withRequestID
func requestID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue(requestIDKey).(string)
	return id
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	base, cancel := context.WithCancel(ctx)
	defer cancel()
	s.base = base

	srv := &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               s.config.ServerName,
		MaxRequestBodySize: int(s.config.MaxFileSize),
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       2 * time.Minute,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Listening on http://%s", s.config.Address())
		errChan <- srv.ListenAndServe(s.config.Address())
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("failed to serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		return nil
	}
}

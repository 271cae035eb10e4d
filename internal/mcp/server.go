package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/posesion-efectiva/internal/config"
	"github.com/a3tai/posesion-efectiva/internal/descriptions"
	"github.com/a3tai/posesion-efectiva/internal/drafts"
	"github.com/a3tai/posesion-efectiva/internal/format"
	"github.com/a3tai/posesion-efectiva/internal/mapper"
	"github.com/a3tai/posesion-efectiva/internal/model"
	"github.com/a3tai/posesion-efectiva/internal/pdf"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	drafts     *drafts.Store
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service, store *drafts.Store) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("draft store cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // the tool set is fixed
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		drafts:     store,
		mcpServer:  mcpServer,
	}
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	caseArg := mcp.WithObject("case",
		mcp.Required(),
		mcp.Description("The declaration case: causante, herederos, bienes_raices, vehiculos, menaje, otros_muebles, otros_bienes, pasivos, presuncion_20, ..."),
	)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.GeneratePDF,
		mcp.WithDescription(descriptions.GeneratePDFDescription),
		caseArg,
		mcp.WithString("filename",
			mcp.Description("Output file name (default: PE_<surname>_<date>.pdf)"),
		),
	), s.handleGeneratePDF)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ComputeTotals,
		mcp.WithDescription(descriptions.ComputeTotalsDescription),
		caseArg,
	), s.handleComputeTotals)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.CalculatePresumption,
		mcp.WithDescription(descriptions.CalculatePresumptionDescription),
		mcp.WithNumber("valor_primer_br",
			mcp.Required(),
			mcp.Description("Value of the first real-estate asset in pesos"),
		),
	), s.handleCalculatePresumption)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.TemplateFields,
		mcp.WithDescription(descriptions.TemplateFieldsDescription),
	), s.handleTemplateFields)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.SaveDraft,
		mcp.WithDescription(descriptions.SaveDraftDescription),
		caseArg,
		mcp.WithString("nombre",
			mcp.Description("Optional draft label used for the file name"),
		),
	), s.handleSaveDraft)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ListDrafts,
		mcp.WithDescription(descriptions.ListDraftsDescription),
	), s.handleListDrafts)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.LoadDraft,
		mcp.WithDescription(descriptions.LoadDraftDescription),
		mcp.WithString("filename",
			mcp.Required(),
			mcp.Description("Draft file name as returned by pe_list_drafts"),
		),
	), s.handleLoadDraft)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.DeleteDraft,
		mcp.WithDescription(descriptions.DeleteDraftDescription),
		mcp.WithString("filename",
			mcp.Required(),
			mcp.Description("Draft file name as returned by pe_list_drafts"),
		),
	), s.handleDeleteDraft)
}

// caseJSON returns the "case" argument as JSON. Clients may send the object
// itself or its JSON text.
func caseJSON(request mcp.CallToolRequest) ([]byte, error) {
	raw, ok := request.GetArguments()["case"]
	if !ok || raw == nil {
		return nil, fmt.Errorf("required argument \"case\" not found")
	}
	if text, ok := raw.(string); ok {
		return []byte(text), nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid case argument: %w", err)
	}
	return data, nil
}

func decodeCase(request mcp.CallToolRequest) (*model.CaseInput, error) {
	data, err := caseJSON(request)
	if err != nil {
		return nil, err
	}
	return model.Decode(data)
}

// Handler functions
func (s *Server) handleGeneratePDF(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := decodeCase(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.FillDocument(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	name := filepath.Base(result.Filename)
	if custom, ok := request.GetArguments()["filename"].(string); ok && strings.TrimSpace(custom) != "" {
		name = filepath.Base(strings.TrimSpace(custom))
		if !strings.EqualFold(filepath.Ext(name), ".pdf") {
			name += ".pdf"
		}
	}
	path := filepath.Join(s.config.OutputDirectory, name)
	if err := os.WriteFile(path, result.PDF, 0o644); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write %s: %v", path, err)), nil
	}
	if s.config.IsDebug() {
		log.Printf("Generated %s (%d pages)", path, result.Pages)
	}

	responseText := fmt.Sprintf("Generated PDF: %s\n", path)
	responseText += fmt.Sprintf("Pages: %d (%d added by the %s strategy)\n", result.Pages, result.ExtraPages, result.Strategy)
	responseText += fmt.Sprintf("Size: %d bytes\n", result.Size)
	responseText += fmt.Sprintf("Template fields not found: %d\n", result.Missing.Count())
	responseText += "\n" + formatTotals(result.Totals)

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleComputeTotals(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := decodeCase(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result := s.pdfService.Compute(in)

	responseText := formatTotals(result.Totals)
	if result.Overflow.Empty() {
		responseText += "\nEvery entry fits the form.\n"
		return mcp.NewToolResultText(responseText), nil
	}
	responseText += fmt.Sprintf("\nEntries beyond the form's slots: %d\n", result.Overflow.Count())
	for _, g := range result.Overflow {
		responseText += fmt.Sprintf("- %s: %d (capacity %d)\n", g.Category.Title(), len(g.Entries), g.Capacity)
	}
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleCalculatePresumption(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := request.GetArguments()["valor_primer_br"]
	if !ok {
		return mcp.NewToolResultError("required argument \"valor_primer_br\" not found"), nil
	}
	value, err := amountOf(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	presumption := mapper.PresumptionAmount(value, s.pdfService.Mapper().Schema().Presumption.Rate)
	responseText := fmt.Sprintf("First real-estate value: %s\n", pesos(value))
	responseText += fmt.Sprintf("Presumption (%s): %s\n", s.pdfService.Mapper().Schema().Presumption.Rate.String(), pesos(presumption))
	return mcp.NewToolResultText(responseText), nil
}

// amountOf reads a number or numeric string the way case amounts are read
func amountOf(raw any) (int64, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid amount: %w", err)
	}
	var t model.Text
	if err := json.Unmarshal(data, &t); err != nil {
		return 0, fmt.Errorf("invalid amount: %w", err)
	}
	return t.Amount(), nil
}

func (s *Server) handleTemplateFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.pdfService.TemplateFields()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Template: %s\n", report.Template)
	responseText += fmt.Sprintf("Schema version: %s\n", report.Version)
	responseText += fmt.Sprintf("Pages: %d\n", report.Pages)
	responseText += fmt.Sprintf("Form fields: %d\n", len(report.Fields))
	if report.Complete() {
		responseText += "\nThe template has every field the form vocabulary uses.\n"
		return mcp.NewToolResultText(responseText), nil
	}
	responseText += fmt.Sprintf("\nMissing text fields (%d):\n", len(report.MissingFields))
	for _, name := range report.MissingFields {
		responseText += "- " + name + "\n"
	}
	responseText += fmt.Sprintf("\nMissing checkboxes (%d):\n", len(report.MissingCheckboxes))
	for _, name := range report.MissingCheckboxes {
		responseText += "- " + name + "\n"
	}
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleSaveDraft(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := caseJSON(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	label, _ := request.GetArguments()["nombre"].(string)

	result, err := s.drafts.Save(data, label)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Draft saved: %s\n", result.Filename)), nil
}

func (s *Server) handleListDrafts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.drafts.List()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(list) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No drafts in %s\n", s.drafts.Directory())), nil
	}

	responseText := fmt.Sprintf("Found %d draft(s) in %s:\n\n", len(list), s.drafts.Directory())
	for i, d := range list {
		responseText += fmt.Sprintf("%d. %s\n", i+1, d.Filename)
		responseText += fmt.Sprintf("   Causante: %s", d.Decedent)
		if d.DecedentRUT != "" {
			responseText += fmt.Sprintf(" (%s)", d.DecedentRUT)
		}
		responseText += fmt.Sprintf("\n   Modified: %s, %d bytes\n", d.Modified.Format("2006-01-02 15:04:05"), d.Size)
	}
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleLoadDraft(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.drafts.Load(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleDeleteDraft(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.drafts.Delete(name); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Draft deleted: %s\n", filepath.Base(name))), nil
}

// formatTotals renders the category totals in peso notation
func formatTotals(t mapper.Totals) string {
	text := "Totals:\n"
	for _, c := range mapper.Categories {
		text += fmt.Sprintf("- %s: %s\n", c.Title(), pesos(t.Of(c)))
	}
	text += fmt.Sprintf("Total assets: %s\n", pesos(t.Assets()))
	text += fmt.Sprintf("Net estate: %s\n", pesos(t.NetEstate()))
	return text
}

// Run serves the tools over standard I/O until ctx is cancelled or stdin
// closes
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting MCP server in stdio mode")
		log.Printf("Template: %s, drafts: %s, output: %s", s.config.TemplatePath, s.config.DraftsDirectory, s.config.OutputDirectory)
	}

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.New(os.Stderr, "", log.LstdFlags))
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

func pesos(n int64) string {
	return "$" + format.Amount(n)
}

// Package pdf assembles the filled declaration: it loads the template, applies
// the field map, locks the form, appends overflow pages and serializes.
package pdf

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/a3tai/posesion-efectiva/internal/errors"
	"github.com/a3tai/posesion-efectiva/internal/format"
	"github.com/a3tai/posesion-efectiva/internal/formschema"
	"github.com/a3tai/posesion-efectiva/internal/mapper"
	"github.com/a3tai/posesion-efectiva/internal/model"
	"github.com/a3tai/posesion-efectiva/internal/overflow"
	"github.com/a3tai/posesion-efectiva/internal/pdf/wrapper"
)

// Options configures a Service
type Options struct {
	TemplatePath string
	// Schema defaults to the embedded vocabulary
	Schema      *formschema.Schema
	Strategy    overflow.Strategy
	MaxFileSize int64
	DebugMode   bool
	// Library defaults to pdfcpu
	Library wrapper.PDFLibrary
}

// Service handles document generation by orchestrating the mapping, overflow
// and PDF components. It holds no per-request state.
type Service struct {
	maxFileSize int64
	strategy    overflow.Strategy
	debugMode   bool
	mapper      *mapper.Mapper
	library     wrapper.PDFLibrary
	templates   *TemplateCache
	now         func() time.Time
}

// NewService creates a new document service
func NewService(opts Options) (*Service, error) {
	if opts.MaxFileSize <= 0 {
		return nil, fmt.Errorf("max file size must be positive, got %d", opts.MaxFileSize)
	}
	if opts.TemplatePath == "" {
		return nil, fmt.Errorf("template path cannot be empty")
	}

	schema := opts.Schema
	if schema == nil {
		schema = formschema.Default()
	}
	library := opts.Library
	if library == nil {
		library = wrapper.NewPDFCPULibrary(opts.DebugMode)
	}

	// the template must contain the inventory page being replicated
	minPages := schema.Layout.InventoryPage + 1

	return &Service{
		maxFileSize: opts.MaxFileSize,
		strategy:    opts.Strategy,
		debugMode:   opts.DebugMode,
		mapper:      mapper.New(schema),
		library:     library,
		templates:   NewTemplateCache(opts.TemplatePath, minPages, NewValidator(opts.MaxFileSize), opts.DebugMode),
		now:         time.Now,
	}, nil
}

// Strategy returns the configured overflow strategy
func (s *Service) Strategy() overflow.Strategy {
	return s.strategy
}

// GetMaxFileSize returns the maximum template size
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// Mapper returns the field mapper used for documents
func (s *Service) Mapper() *mapper.Mapper {
	return s.mapper
}

// Compute maps a case without touching the template
func (s *Service) Compute(in *model.CaseInput) *mapper.Result {
	return s.mapper.Map(in)
}

// FillDocument renders the declaration for one case. Fields the template does
// not have are collected in the result; any document level failure aborts the
// request and no partial output is returned.
func (s *Service) FillDocument(ctx context.Context, in *model.CaseInput) (*FillResult, error) {
	if in == nil {
		in = &model.CaseInput{}
	}
	if limit := s.mapper.Schema().Layout.MaxInventorySheets; in.SheetCount() > limit {
		return nil, errors.Errorf(errors.KindInvalidInput, opGenerate,
			"inventario_hojas %d exceeds the limit of %d sheets", in.SheetCount(), limit)
	}

	template, err := s.templates.Bytes()
	if err != nil {
		return nil, err
	}
	result := s.mapper.Map(in)

	doc, err := s.library.Load(template)
	if err != nil {
		return nil, errors.New(errors.KindTemplateParse, opGenerate, err).WithContext(s.templates.Path())
	}

	misses := errors.NewCollection(s.templates.Path())
	apply(doc, result, misses)
	if misses.Count() > 0 && s.debugMode {
		log.Printf("%s: %s", misses.Summary(), strings.Join(misses.Misses, ", "))
	}
	doc.Flatten()

	base, err := doc.Serialize()
	if err != nil {
		return nil, errors.New(errors.KindSerialization, opGenerate, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.New(errors.KindUnknown, opGenerate, err)
	}

	extra, err := s.overflowPages(template, in, result)
	if err != nil {
		return nil, err
	}

	parts := [][]byte{base}
	if extra != nil {
		parts = append(parts, extra)
	}
	out, err := s.library.Merge(parts...)
	if err != nil {
		return nil, errors.New(errors.KindSerialization, opGenerate, err)
	}
	pages, err := s.library.PageCount(out)
	if err != nil {
		return nil, errors.New(errors.KindSerialization, opGenerate, err)
	}

	return &FillResult{
		PDF:        out,
		Filename:   DownloadFilename(in, s.now()),
		Pages:      pages,
		Size:       len(out),
		ExtraPages: pages - doc.PageCount(),
		Strategy:   s.strategy,
		Totals:     result.Totals,
		Missing:    misses,
	}, nil
}

// apply writes the maps through the best-effort setters, in name order so
// the collected misses are stable
func apply(w wrapper.FormFieldWriter, result *mapper.Result, misses *errors.Collection) {
	for _, name := range sortedKeys(result.Fields) {
		if !w.TrySetText(name, result.Fields[name]) {
			misses.Add(name)
		}
	}
	for _, name := range sortedKeys(result.Checkboxes) {
		if !w.TrySetCheckbox(name, result.Checkboxes[name]) {
			misses.Add(name)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// overflowPages returns the pages appended after the filled form, or nil
func (s *Service) overflowPages(template []byte, in *model.CaseInput, result *mapper.Result) ([]byte, error) {
	switch s.strategy {
	case overflow.Annex:
		data, pages, err := overflow.RenderAnnex(overflow.AnnexDocument{
			Subject: in.Decedent.FullName(),
			Groups:  result.Overflow,
		})
		if err != nil {
			return nil, errors.New(errors.KindSerialization, opGenerate, err)
		}
		if s.debugMode && pages > 0 {
			log.Printf("Annex: %d entries on %d pages", result.Overflow.Count(), pages)
		}
		return data, nil
	default:
		plan := overflow.PlanReplication(in.SheetCount(), s.mapper.Schema().Layout)
		if plan.Empty() {
			return nil, nil
		}
		data, err := s.library.CopyPage(template, plan.Page, plan.Copies)
		if err != nil {
			return nil, errors.New(errors.KindSerialization, opGenerate, err)
		}
		if s.debugMode {
			log.Printf("Replicated inventory page %d %d times", plan.Page+1, plan.Copies)
		}
		return data, nil
	}
}

// TemplateFields lists the template's form fields and the schema names it
// lacks
func (s *Service) TemplateFields() (*FieldReport, error) {
	template, err := s.templates.Bytes()
	if err != nil {
		return nil, err
	}
	doc, err := s.library.Load(template)
	if err != nil {
		return nil, errors.New(errors.KindTemplateParse, opFields, err).WithContext(s.templates.Path())
	}

	fields, checkboxes := s.mapper.Vocabulary()
	catalog := doc.Catalog()
	return &FieldReport{
		Template:          s.templates.Path(),
		Version:           s.mapper.Schema().Version,
		Pages:             doc.PageCount(),
		Fields:            catalog.Fields(),
		MissingFields:     catalog.Missing(fields),
		MissingCheckboxes: catalog.Missing(checkboxes),
	}, nil
}

// DownloadFilename names a generated document after the decedent's first
// surname and the date: PE_<surname>_<YYYY-MM-DD>.pdf. The surname is reduced
// to ASCII letters and digits.
func DownloadFilename(in *model.CaseInput, now time.Time) string {
	var surname string
	if in != nil {
		surname = string(in.Decedent.FirstSurname)
	}
	return fmt.Sprintf("PE_%s_%s.pdf", format.FilenamePart(surname, "posesion"), now.UTC().Format("2006-01-02"))
}

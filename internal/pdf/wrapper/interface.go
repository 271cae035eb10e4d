package wrapper

import (
	"fmt"

	"github.com/a3tai/posesion-efectiva/internal/pdf/extraction"
)

// FormFieldWriter assigns form values without failing on names the template
// does not have. Both setters report whether the field was found.
type FormFieldWriter interface {
	TrySetText(name, value string) bool
	TrySetCheckbox(name string, checked bool) bool
}

// FormDocument is a form-bearing document loaded for filling
type FormDocument interface {
	FormFieldWriter

	// Flatten makes every field of the output non-editable
	Flatten()
	PageCount() int
	Catalog() *extraction.Catalog
	Serialize() ([]byte, error)
}

// PDFLibrary is what document assembly needs from a PDF backend
type PDFLibrary interface {
	Load(data []byte) (FormDocument, error)
	// CopyPage returns a document made of copies of one zero-based page
	CopyPage(data []byte, page, copies int) ([]byte, error)
	// Merge concatenates all pages of the documents in order
	Merge(docs ...[]byte) ([]byte, error)
	PageCount(data []byte) (int, error)

	GetLibraryType() LibraryType
}

// LibraryType identifies the PDF backend
type LibraryType string

const (
	LibraryPDFCPU LibraryType = "pdfcpu"
)

// WrapperError represents errors from PDF library wrappers
type WrapperError struct {
	Library LibraryType `json:"library"`
	Op      string      `json:"operation"`
	Err     error       `json:"error"`
}

func (e *WrapperError) Error() string {
	return fmt.Sprintf("PDF %s library error in %s: %v", e.Library, e.Op, e.Err)
}

func (e *WrapperError) Unwrap() error {
	return e.Err
}

// Common error variables
var (
	ErrInvalidPage = &WrapperError{Op: "page", Err: fmt.Errorf("invalid page number")}
	ErrNoDocuments = &WrapperError{Op: "merge", Err: fmt.Errorf("no documents to merge")}
)

// Package errors is the error taxonomy of document generation and draft
// storage. Per-field problems are recoverable and only collected; document
// level I/O failures are request-fatal and carry the operation that failed.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Kind categorizes a failure
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindTemplateLoad
	KindTemplateParse
	KindSerialization
	KindDraftIO
	KindNotFound
	KindFieldMissing
)

// String returns the stable name of the kind
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "INVALID_INPUT"
	case KindTemplateLoad:
		return "TEMPLATE_LOAD"
	case KindTemplateParse:
		return "TEMPLATE_PARSE"
	case KindSerialization:
		return "SERIALIZATION"
	case KindDraftIO:
		return "DRAFT_IO"
	case KindNotFound:
		return "NOT_FOUND"
	case KindFieldMissing:
		return "FIELD_MISSING"
	default:
		return "UNKNOWN"
	}
}

// IsRecoverable reports whether a failure of this kind is absorbed locally
func (k Kind) IsRecoverable() bool {
	return k == KindFieldMissing
}

// OpError is a failure with the human-readable operation it interrupted
type OpError struct {
	Kind Kind
	// Op is the message shown to the user, e.g. "Error al generar el PDF"
	Op        string
	Err       error
	Context   string
	Timestamp time.Time
}

// Error implements the error interface
func (e *OpError) Error() string {
	msg := e.Op
	if e.Context != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Context)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *OpError) Unwrap() error {
	return e.Err
}

// Details is the underlying cause as a string, empty when there is none
func (e *OpError) Details() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// WithContext adds context to the error
func (e *OpError) WithContext(context string) *OpError {
	e.Context = context
	return e
}

// New creates an OpError
func New(kind Kind, op string, err error) *OpError {
	return &OpError{
		Kind:      kind,
		Op:        op,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// Errorf creates an OpError whose cause is built from a format string
func Errorf(kind Kind, op, format string, args ...any) *OpError {
	return New(kind, op, fmt.Errorf(format, args...))
}

// KindOf returns the kind of the first OpError in the chain
func KindOf(err error) Kind {
	var op *OpError
	if errors.As(err, &op) {
		return op.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is a not-found failure
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsInvalidInput reports whether err was caused by the request itself
func IsInvalidInput(err error) bool {
	return KindOf(err) == KindInvalidInput
}

// Split returns the user message and the detail string of any error
func Split(err error, fallbackOp string) (message, details string) {
	var op *OpError
	if errors.As(err, &op) {
		return op.Op, op.Details()
	}
	return fallbackOp, err.Error()
}

// Collection gathers the recoverable misses of one request
type Collection struct {
	Misses []string `json:"misses"`
	Source string   `json:"source,omitempty"`
}

// NewCollection creates a collection for the named source
func NewCollection(source string) *Collection {
	return &Collection{Misses: make([]string, 0), Source: source}
}

// Add records a missed name
func (c *Collection) Add(name string) {
	c.Misses = append(c.Misses, name)
}

// Count returns the number of misses
func (c *Collection) Count() int {
	return len(c.Misses)
}

// Summary returns a one-line description of the misses
func (c *Collection) Summary() string {
	if len(c.Misses) == 0 {
		return "No missing fields"
	}
	if c.Source != "" {
		return fmt.Sprintf("%d field(s) not present in %s", len(c.Misses), c.Source)
	}
	return fmt.Sprintf("%d field(s) not present", len(c.Misses))
}

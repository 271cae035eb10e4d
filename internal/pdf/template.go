package pdf

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/a3tai/posesion-efectiva/internal/errors"
)

// TemplateCache keeps the template bytes read-only in memory and reloads them
// when the file on disk changes. The returned slice must not be modified.
type TemplateCache struct {
	path      string
	minPages  int
	validator *Validator
	debugMode bool

	mu      sync.Mutex
	data    []byte
	modTime time.Time
	size    int64
}

// NewTemplateCache creates a cache for the template at path. minPages is the
// smallest page count a usable template has.
func NewTemplateCache(path string, minPages int, validator *Validator, debugMode bool) *TemplateCache {
	return &TemplateCache{
		path:      path,
		minPages:  minPages,
		validator: validator,
		debugMode: debugMode,
	}
}

// Path returns the template location
func (c *TemplateCache) Path() string {
	return c.path
}

// Bytes returns the current template
func (c *TemplateCache) Bytes() ([]byte, error) {
	info, err := c.validator.ValidateFile(c.path)
	if err != nil {
		return nil, errors.New(errors.KindTemplateLoad, opGenerate, err).WithContext(c.path)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.data != nil && info.ModTime().Equal(c.modTime) && info.Size() == c.size {
		return c.data, nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, errors.New(errors.KindTemplateLoad, opGenerate,
			fmt.Errorf("failed to read template: %w", err)).WithContext(c.path)
	}
	pages, err := c.validator.ValidateContent(data, c.minPages)
	if err != nil {
		return nil, errors.New(errors.KindTemplateParse, opGenerate, err).WithContext(c.path)
	}

	if c.debugMode {
		log.Printf("Loaded template %s (%d bytes, %d pages)", c.path, len(data), pages)
	}
	c.data = data
	c.modTime = info.ModTime()
	c.size = info.Size()
	return c.data, nil
}

// Package drafts persists submitted cases as JSON files in one flat
// directory. Saved content is stored verbatim and loaded back byte for byte.
package drafts

import (
	"bytes"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/a3tai/posesion-efectiva/internal/errors"
	"github.com/a3tai/posesion-efectiva/internal/model"
)

// User-facing operation messages
const (
	OpSave     = "Error al guardar borrador"
	OpList     = "Error al listar borradores"
	OpLoad     = "Error al cargar borrador"
	OpDelete   = "Error al eliminar borrador"
	OpNotFound = "Borrador no encontrado"
)

// Summary describes a stored draft
type Summary struct {
	Filename string    `json:"filename"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
	// Decedent is the decedent's full name, "Sin nombre" when empty
	Decedent    string `json:"causante"`
	DecedentRUT string `json:"rut_causante"`
	Size        int64  `json:"size"`
}

// SaveResult is the outcome of a save
type SaveResult struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
}

// Store is a draft directory. Concurrent saves under an identical name race
// and the last writer wins.
type Store struct {
	paths     *PathValidator
	debugMode bool
	now       func() time.Time
}

// NewStore opens the draft directory, creating it when missing
func NewStore(directory string, debugMode bool) (*Store, error) {
	paths, err := NewPathValidator(directory)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(paths.Directory(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create draft directory: %w", err)
	}
	return &Store{paths: paths, debugMode: debugMode, now: time.Now}, nil
}

// Directory returns the absolute draft directory
func (s *Store) Directory() string {
	return s.paths.Directory()
}

// envelope is the save body carrying a label next to the case
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Label *model.Text     `json:"nombre"`
}

// truthy reports whether a JSON value counts as set: absent, null, false,
// numeric zero and the empty string do not. Empty objects and arrays do.
func truthy(raw []byte) bool {
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")), bytes.Equal(raw, []byte("false")):
		return false
	case raw[0] == '"':
		return len(raw) > 2
	case raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'):
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return true
		}
		return n != 0
	}
	return true
}

// Unwrap splits a save body into the case JSON and the optional label. A
// body with a set "data" member is an envelope; anything else, including
// "data" of null, false, 0 or "", is the case itself.
func Unwrap(body []byte) (data []byte, label string, err error) {
	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		return nil, "", fmt.Errorf("body is not valid JSON")
	}
	if len(body) == 0 || body[0] != '{' {
		return body, "", nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return body, "", nil //nolint:nilerr // not an envelope, store as is
	}
	raw := bytes.TrimSpace(env.Data)
	if !truthy(raw) {
		return body, "", nil
	}
	if env.Label != nil {
		label = env.Label.String()
	}
	return raw, label, nil
}

// decedentName is the subset of a case needed to name and list drafts
type decedentName struct {
	Decedent struct {
		FirstNames    model.Text `json:"nombres"`
		FirstSurname  model.Text `json:"primer_apellido"`
		SecondSurname model.Text `json:"segundo_apellido"`
		NationalID    model.Text `json:"rut"`
	} `json:"causante"`
}

// Save stores the case JSON verbatim. label may be empty.
func (s *Store) Save(data []byte, label string) (*SaveResult, error) {
	if !json.Valid(data) {
		return nil, errors.Errorf(errors.KindInvalidInput, OpSave, "draft is not valid JSON")
	}

	var who decedentName
	_ = json.Unmarshal(data, &who) // non-object drafts are named "sin_nombre"
	filename := Filename(label, who.Decedent.FirstSurname.String(), who.Decedent.FirstNames.String(), s.now())

	path, err := s.paths.Resolve(filename)
	if err != nil {
		return nil, errors.New(errors.KindDraftIO, OpSave, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, errors.New(errors.KindDraftIO, OpSave, err).WithContext(filename)
	}
	if s.debugMode {
		log.Printf("Draft saved: %s (%d bytes)", filename, len(data))
	}
	return &SaveResult{Success: true, Filename: filename}, nil
}

// List returns the drafts, most recently modified first. Files that cannot
// be read or parsed are skipped.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.paths.Directory())
	if os.IsNotExist(err) {
		return []Summary{}, nil
	}
	if err != nil {
		return nil, errors.New(errors.KindDraftIO, OpList, err)
	}

	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		summary, err := s.summarize(entry)
		if err != nil {
			if s.debugMode {
				log.Printf("Skipping draft %s: %v", entry.Name(), err)
			}
			continue
		}
		summaries = append(summaries, *summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if !summaries[i].Modified.Equal(summaries[j].Modified) {
			return summaries[i].Modified.After(summaries[j].Modified)
		}
		return summaries[i].Filename > summaries[j].Filename
	})
	return summaries, nil
}

func (s *Store) summarize(entry fs.DirEntry) (*Summary, error) {
	info, err := entry.Info()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.paths.Directory(), entry.Name()))
	if err != nil {
		return nil, err
	}
	var who decedentName
	if err := json.Unmarshal(data, &who); err != nil {
		return nil, err
	}

	c := who.Decedent
	name := strings.TrimSpace(c.FirstNames.String() + " " + c.FirstSurname.String() + " " + c.SecondSurname.String())
	if name == "" {
		name = "Sin nombre"
	}
	return &Summary{
		Filename: entry.Name(),
		// the creation time is not portable, the modification time stands in
		Created:     info.ModTime(),
		Modified:    info.ModTime(),
		Decedent:    name,
		DecedentRUT: c.NationalID.String(),
		Size:        info.Size(),
	}, nil
}

// Load returns the stored bytes of a draft
func (s *Store) Load(name string) ([]byte, error) {
	path, err := s.existing(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.KindDraftIO, OpLoad, err)
	}
	if !json.Valid(data) {
		return nil, errors.Errorf(errors.KindDraftIO, OpLoad, "stored draft is not valid JSON")
	}
	return data, nil
}

// Delete removes a draft
func (s *Store) Delete(name string) error {
	path, err := s.existing(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return errors.New(errors.KindDraftIO, OpDelete, err)
	}
	if s.debugMode {
		log.Printf("Draft deleted: %s", name)
	}
	return nil
}

// existing resolves name to a regular file of the directory
func (s *Store) existing(name string) (string, error) {
	path, err := s.paths.Resolve(name)
	if err != nil {
		return "", errors.New(errors.KindNotFound, OpNotFound, nil)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", errors.New(errors.KindNotFound, OpNotFound, nil)
	}
	return path, nil
}

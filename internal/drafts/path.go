package drafts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator confines draft names to the draft directory
type PathValidator struct {
	directory string
}

// NewPathValidator creates a new path validator for the given directory
func NewPathValidator(directory string) (*PathValidator, error) {
	if directory == "" {
		return nil, fmt.Errorf("draft directory cannot be empty")
	}
	abs, err := filepath.Abs(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve draft directory: %w", err)
	}
	return &PathValidator{directory: filepath.Clean(abs)}, nil
}

// Directory returns the absolute draft directory
func (v *PathValidator) Directory() string {
	return v.directory
}

// Resolve maps a client-supplied name to a file of the draft directory. Only
// the base name is used, so "../x.json" resolves to "x.json".
func (v *PathValidator) Resolve(name string) (string, error) {
	name = strings.ReplaceAll(name, "\x00", "")
	base := filepath.Base(filepath.Clean("/" + filepath.ToSlash(name)))
	if base == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid draft name: %q", name)
	}

	path := filepath.Join(v.directory, base)
	within, err := v.IsPathWithinDirectory(path)
	if err != nil {
		return "", fmt.Errorf("path validation failed: %w", err)
	}
	if !within {
		return "", fmt.Errorf("path is outside draft directory: %s", name)
	}
	return path, nil
}

// IsPathWithinDirectory checks that path, with symlinks resolved, stays
// inside the draft directory
func (v *PathValidator) IsPathWithinDirectory(path string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	cleanPath := filepath.Clean(absPath)

	realDir := v.directory
	if resolved, err := filepath.EvalSymlinks(v.directory); err == nil {
		realDir = resolved
	}

	realPath := cleanPath
	if info, err := os.Lstat(cleanPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		resolved, err := filepath.EvalSymlinks(cleanPath)
		if err != nil {
			return false, nil //nolint:nilerr // a dangling link is simply not inside
		}
		realPath = resolved
	}

	within := func(p string) bool {
		for _, dir := range []string{v.directory, realDir} {
			if strings.HasPrefix(p, dir+string(filepath.Separator)) {
				return true
			}
		}
		return false
	}
	return within(cleanPath) && within(realPath), nil
}

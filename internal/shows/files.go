package shows

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"soundcheck/internal/logging"
)

// File is one per-venue show document.
type File struct {
	Path  string
	Venue string
	Shows []Show

	// Some venues write a bare array, others wrap it in an object
	// with a "shows" key. The original shape is preserved on save.
	wrapped bool
	doc     map[string]any
	raw     []any
	dirty   bool
}

// LoadFile parses a single shows-<venue>.json document.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read show file: %w", err)
	}

	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse show file %s: %w", filepath.Base(path), err)
	}

	file := &File{Path: path, Venue: venueFromFilename(path)}
	switch doc := root.(type) {
	case map[string]any:
		file.wrapped = true
		file.doc = doc
		if list, ok := doc["shows"].([]any); ok {
			file.raw = list
		}
	case []any:
		file.raw = doc
	default:
		return nil, fmt.Errorf("show file %s: unexpected document shape", filepath.Base(path))
	}

	for _, item := range file.raw {
		if record, ok := item.(map[string]any); ok {
			file.Shows = append(file.Shows, Show(record))
		}
	}
	return file, nil
}

// LoadDir loads every shows-*.json file in lexical filename order.
// Malformed files are logged and skipped so one broken scrape does not
// stall the whole run.
func LoadDir(dir string, logger *slog.Logger) ([]*File, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "shows")

	pattern := filepath.Join(dir, "shows-*.json")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob show files: %w", err)
	}
	sort.Strings(paths)

	files := make([]*File, 0, len(paths))
	for _, path := range paths {
		file, err := LoadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable show file",
				logging.String("path", path),
				logging.Error(err))
			continue
		}
		files = append(files, file)
	}
	return files, nil
}

// MarkDirty flags the file for rewriting.
func (f *File) MarkDirty() { f.dirty = true }

// Dirty reports whether the file has unsaved changes.
func (f *File) Dirty() bool { return f.dirty }

// Save rewrites the whole document atomically, preserving the original
// wrapper shape. A clean file is left untouched.
func (f *File) Save() error {
	if !f.dirty {
		return nil
	}

	var root any = f.raw
	if f.wrapped {
		f.doc["shows"] = f.raw
		root = f.doc
	}
	if root == nil {
		root = []any{}
	}

	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal show file: %w", err)
	}
	data = append(data, '\n')

	tmpPath := f.Path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	f.dirty = false
	return nil
}

func venueFromFilename(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".json")
	return strings.TrimPrefix(base, "shows-")
}

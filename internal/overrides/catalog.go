// Package overrides loads the user-authored table mapping artist names to a
// forced video id or an explicit "no video" marker. It is the highest
// priority matching signal, consulted before any search, and is never written
// by the pipeline.
package overrides

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"soundcheck/internal/logging"
	"soundcheck/internal/namenorm"
)

// Override is a single resolved table entry.
type Override struct {
	VideoID string
	// NoVideo is set when the table explicitly maps the artist to null,
	// meaning "stop searching, there is no acceptable video".
	NoVideo bool
}

// Catalog provides lookups against the overrides JSON document. The file is
// reloaded when its modification time changes, so edits land without a
// restart.
type Catalog struct {
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
	loaded time.Time
	doc    document
}

type document struct {
	ArtistYouTube map[string]*string `json:"artist_youtube"`
	OpenerYouTube map[string]*string `json:"opener_youtube"`
}

// NewCatalog constructs a catalog backed by the provided JSON file.
func NewCatalog(path string, logger *slog.Logger) *Catalog {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Catalog{path: trimmed, logger: logger}
}

// Lookup returns the override for an artist name, if any. The exact scraped
// name is checked first, then its cleaned form, so a table keyed on either
// spelling works.
func (c *Catalog) Lookup(artistName string, isOpener bool) (Override, bool, error) {
	if c == nil || strings.TrimSpace(artistName) == "" {
		return Override{}, false, nil
	}
	if err := c.ensureLoaded(); err != nil {
		return Override{}, false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	table := c.doc.ArtistYouTube
	if isOpener {
		table = c.doc.OpenerYouTube
	}
	if len(table) == 0 {
		return Override{}, false, nil
	}

	keys := []string{strings.TrimSpace(artistName)}
	if cleaned, ok := namenorm.CleanTitle(artistName); ok && cleaned != keys[0] {
		keys = append(keys, cleaned)
	}
	for _, key := range keys {
		if value, ok := table[key]; ok {
			if value == nil {
				return Override{NoVideo: true}, true, nil
			}
			return Override{VideoID: strings.TrimSpace(*value)}, true, nil
		}
	}
	return Override{}, false, nil
}

func (c *Catalog) ensureLoaded() error {
	c.mu.RLock()
	path := c.path
	c.mu.RUnlock()

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	c.mu.RLock()
	alreadyLoaded := !c.loaded.IsZero() && c.loaded.Equal(info.ModTime())
	c.mu.RUnlock()
	if alreadyLoaded {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc document
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.doc = doc
	c.loaded = info.ModTime()
	c.mu.Unlock()

	c.logger.Info("loaded overrides",
		logging.String("path", path),
		logging.Int("headliners", len(doc.ArtistYouTube)),
		logging.Int("openers", len(doc.OpenerYouTube)))
	return nil
}

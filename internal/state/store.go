package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"soundcheck/internal/logging"
)

// Statuses a video state record can carry.
const (
	StatusVerified     = "verified"
	StatusRejected     = "rejected"
	StatusOverrideNull = "override_null"
)

// Metadata captures what verification observed about a video the last
// time it was checked.
type Metadata struct {
	Title           string    `json:"title,omitempty"`
	ChannelName     string    `json:"channel_name,omitempty"`
	ChannelID       string    `json:"channel_id,omitempty"`
	ViewCount       int64     `json:"view_count,omitempty"`
	SubscriberCount int64     `json:"subscriber_count,omitempty"`
	Published       time.Time `json:"published,omitzero"`
	ChannelMatch    bool      `json:"channel_match,omitempty"`
	IsTopic         bool      `json:"is_topic,omitempty"`
	Trusted         bool      `json:"trusted,omitempty"`
}

// Record is the lifecycle state for one artist's assigned video.
type Record struct {
	Status       string    `json:"status"`
	VideoID      string    `json:"video_id,omitempty"`
	VerifiedDate time.Time `json:"verified_date,omitzero"`
	RejectedDate time.Time `json:"rejected_date,omitzero"`
	Confidence   string    `json:"confidence,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	Metadata     *Metadata `json:"metadata,omitempty"`
}

// Store holds every artist's video state, loaded whole at run start and
// written back whole on save.
type Store struct {
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	records map[string]Record
}

// Load reads the state document at path. A missing file yields an empty
// store; a malformed file is an error, since starting empty would wipe
// recorded rejections on the next save.
func Load(path string, logger *slog.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("state path required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "state")

	store := &Store{
		path:    path,
		logger:  logger,
		now:     time.Now,
		records: make(map[string]Record),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &store.records); err != nil {
			return nil, fmt.Errorf("parse state file %s: %w", path, err)
		}
	}

	logger.Debug("loaded video states",
		logging.Int("record_count", len(store.records)),
		logging.String("path", path))
	return store, nil
}

// Get returns the record for an artist if one exists.
func (s *Store) Get(artist string) (Record, bool) {
	artist = strings.TrimSpace(artist)
	if artist == "" {
		return Record{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, found := s.records[artist]
	return record, found
}

// SetVerified records a passed verification for the artist's video.
func (s *Store) SetVerified(artist, videoID, confidence string, meta *Metadata) Record {
	record := Record{
		Status:       StatusVerified,
		VideoID:      videoID,
		VerifiedDate: s.now(),
		Confidence:   confidence,
		Metadata:     meta,
	}
	s.put(artist, record)
	return record
}

// SetRejected records a failed verification. The record stays on file
// so the artist is never silently re-searched.
func (s *Store) SetRejected(artist, videoID, reason string, meta *Metadata) Record {
	record := Record{
		Status:       StatusRejected,
		VideoID:      videoID,
		RejectedDate: s.now(),
		Reason:       reason,
		Metadata:     meta,
	}
	s.put(artist, record)
	return record
}

// MarkOverrideNull records an explicit "no video" override for an
// artist with no existing record. Existing records are left alone so an
// override never erases verification history.
func (s *Store) MarkOverrideNull(artist string) bool {
	artist = strings.TrimSpace(artist)
	if artist == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[artist]; exists {
		return false
	}
	s.records[artist] = Record{Status: StatusOverrideNull}
	return true
}

func (s *Store) put(artist string, record Record) {
	artist = strings.TrimSpace(artist)
	if artist == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[artist] = record
}

// Rejected returns the set of artists whose current status is rejected.
// The search budget filter treats membership as a permanent stop.
func (s *Store) Rejected() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rejected := make(map[string]struct{})
	for artist, record := range s.records {
		if record.Status == StatusRejected {
			rejected[artist] = struct{}{}
		}
	}
	return rejected
}

// RejectedSince reports whether the artist has a rejection newer than
// the cutoff. A zero cutoff matches any rejection.
func (s *Store) RejectedSince(artist string, cutoff time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, found := s.records[strings.TrimSpace(artist)]
	if !found || record.Status != StatusRejected {
		return false
	}
	if cutoff.IsZero() {
		return true
	}
	return record.RejectedDate.After(cutoff)
}

// All returns a copy of every record keyed by artist.
func (s *Store) All() map[string]Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make(map[string]Record, len(s.records))
	for artist, record := range s.records {
		records[artist] = record
	}
	return records
}

// Artists returns every recorded artist name in sorted order.
func (s *Store) Artists() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artists := make([]string, 0, len(s.records))
	for artist := range s.records {
		artists = append(artists, artist)
	}
	sort.Strings(artists)
	return artists
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// Save writes the full document back to disk atomically.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	s.logger.Debug("saved video states",
		logging.Int("record_count", len(s.records)),
		logging.String("path", s.path))
	return nil
}

package state

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Roles a log entry can describe.
const (
	RoleHeadliner = "headliner"
	RoleOpener    = "opener"
)

// Candidate sources recorded in log entries.
const (
	SourceOverride      = "override"
	SourceStructured    = "structured"
	SourceScrape        = "scrape"
	SourceUnconstrained = "unconstrained"
)

// LogEntry records one matching or verification decision.
type LogEntry struct {
	Timestamp   time.Time `json:"ts"`
	RunID       string    `json:"run_id,omitempty"`
	Artist      string    `json:"artist"`
	Role        string    `json:"role"`
	Venue       string    `json:"venue,omitempty"`
	VideoID     string    `json:"video_id,omitempty"`
	Score       int       `json:"score"`
	Tier        string    `json:"tier"`
	Source      string    `json:"source,omitempty"`
	Explanation string    `json:"explanation,omitempty"`
}

// Log appends decision entries to a JSON Lines file. Entries are never
// rewritten; the file only grows.
type Log struct {
	path string
	now  func() time.Time

	mu   sync.Mutex
	file *os.File
}

// OpenLog opens the match log for appending, creating it and its parent
// directory as needed.
func OpenLog(path string) (*Log, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("match log path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open match log: %w", err)
	}
	return &Log{path: path, now: time.Now, file: file}, nil
}

// Append writes one entry as a single JSON line. A zero timestamp is
// stamped with the current time.
func (l *Log) Append(entry LogEntry) error {
	if strings.TrimSpace(entry.Artist) == "" {
		return errors.New("log entry artist must not be empty")
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal log entry: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.file.Write(line); err != nil {
		return fmt.Errorf("append log entry: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *Log) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// ReadLog parses every entry from the match log in append order. A
// missing file yields no entries. Unparseable lines are skipped; a
// half-written tail from a crashed run must not block an audit.
func ReadLog(path string) ([]LogEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open match log: %w", err)
	}
	defer file.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read match log: %w", err)
	}
	return entries, nil
}

// LatestScores reduces log entries to each artist's most recent score.
// Override and skip decisions carry no candidate score and are ignored.
func LatestScores(entries []LogEntry) map[string]int {
	scores := make(map[string]int)
	for _, entry := range entries {
		if entry.Source == SourceOverride || entry.VideoID == "" {
			continue
		}
		scores[entry.Artist] = entry.Score
	}
	return scores
}

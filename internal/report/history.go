package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"soundcheck/internal/render"
)

// HistoryEntry is one dated accuracy snapshot. Entries accumulate in a
// JSON array, one per run date, and feed the trend report.
type HistoryEntry struct {
	Date              string  `json:"date"`
	AccuracyRate      float64 `json:"accuracy_rate"`
	HeadlinerAccuracy float64 `json:"headliner_accuracy,omitempty"`
	OpenerAccuracy    float64 `json:"opener_accuracy,omitempty"`
	AvgConfidence     float64 `json:"avg_confidence"`
	Verified          int     `json:"verified"`
	Rejected          int     `json:"rejected"`
	NoPreview         int     `json:"no_preview"`
	TotalShows        int     `json:"total_shows"`
}

// LoadHistory reads the accuracy history file. A missing file is an
// empty history.
func LoadHistory(path string) ([]HistoryEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read accuracy history: %w", err)
	}
	var entries []HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse accuracy history %s: %w", path, err)
	}
	return entries, nil
}

// AppendHistory adds an entry to the history file, replacing any
// existing entry for the same date so reruns don't double-count.
func AppendHistory(path string, entry HistoryEntry) error {
	entries, err := LoadHistory(path)
	if err != nil {
		return err
	}

	replaced := false
	for i := range entries {
		if entries[i].Date == entry.Date {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode accuracy history: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write accuracy history: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace accuracy history: %w", err)
	}
	return nil
}

// Trend renders the accuracy snapshots from the past N days plus a
// first-to-last delta line when the window holds at least two entries.
func Trend(entries []HistoryEntry, days int, now time.Time) string {
	cutoff := now.AddDate(0, 0, -days)
	var window []HistoryEntry
	for _, e := range entries {
		d, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			continue
		}
		if !d.Before(cutoff) {
			window = append(window, e)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ACCURACY TREND (last %d days)\n", days)
	if len(window) == 0 {
		b.WriteString("No accuracy data for this period.\n")
		return b.String()
	}

	rows := make([][]string, 0, len(window))
	for _, e := range window {
		rows = append(rows, []string{
			e.Date,
			fmt.Sprintf("%.1f%%", e.AccuracyRate),
			optionalPct(e.HeadlinerAccuracy),
			optionalPct(e.OpenerAccuracy),
			fmt.Sprintf("%.1f", e.AvgConfidence),
			fmt.Sprintf("%d", e.Verified),
			fmt.Sprintf("%d", e.Rejected),
			fmt.Sprintf("%d", e.TotalShows),
		})
	}
	b.WriteString(render.Table(
		[]string{"Date", "Accuracy", "Headliner", "Opener", "Avg Confidence", "Verified", "Rejected", "Total"},
		rows,
		[]render.Alignment{render.Left, render.Right, render.Right, render.Right, render.Right, render.Right, render.Right, render.Right}))
	b.WriteString("\n")

	if len(window) >= 2 {
		first, last := window[0], window[len(window)-1]
		parts := []string{fmt.Sprintf("Accuracy %+.1f%%", last.AccuracyRate-first.AccuracyRate)}
		if last.HeadlinerAccuracy != 0 {
			parts = append(parts, fmt.Sprintf("Headliner %+.1f%%", last.HeadlinerAccuracy-first.HeadlinerAccuracy))
		}
		if last.OpenerAccuracy != 0 {
			parts = append(parts, fmt.Sprintf("Opener %+.1f%%", last.OpenerAccuracy-first.OpenerAccuracy))
		}
		parts = append(parts,
			fmt.Sprintf("Verified %+d", last.Verified-first.Verified),
			fmt.Sprintf("Rejected %+d", last.Rejected-first.Rejected))
		b.WriteString("\nWindow delta: ")
		b.WriteString(strings.Join(parts, " | "))
		b.WriteString("\n")
	}
	return b.String()
}

func optionalPct(value float64) string {
	if value == 0 {
		return "—"
	}
	return fmt.Sprintf("%.1f%%", value)
}

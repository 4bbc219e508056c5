package report

import (
	"encoding/csv"
	"strings"
)

var csvHeader = []string{
	"Section", "Artist", "Venue", "Date", "Video URL",
	"Spotify Match", "Spotify Popularity", "Detail", "Changed",
}

// CSV renders the daily report as a flat CSV for spreadsheet triage.
// Recovered verifications carry "Recovered" in the Changed column so
// the weekly rollup can count them without re-deriving state.
func CSV(delta Delta, queue []QueueRow, profiles Profiles) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(csvHeader); err != nil {
		return "", err
	}

	for _, v := range delta.Verified {
		match, popularity := profiles.matchColumns(v.Artist)
		changed := ""
		if v.Recovered {
			changed = "Recovered"
		}
		if err := w.Write([]string{
			"Verified", v.Artist, v.Venue, v.Date,
			"https://youtube.com/watch?v=" + v.VideoID,
			match, popularity, v.Detail, changed,
		}); err != nil {
			return "", err
		}
	}

	for _, r := range delta.Rejected {
		match, popularity := profiles.matchColumns(r.Artist)
		if err := w.Write([]string{
			"Rejected", r.Artist, r.Venue, r.Date,
			"https://youtube.com/watch?v=" + r.VideoID,
			match, popularity, r.Detail, "",
		}); err != nil {
			return "", err
		}
	}

	for _, q := range queue {
		match, popularity := profiles.matchColumns(q.Artist)
		if err := w.Write([]string{
			"No Preview", q.Artist, q.Venue, q.Date, "",
			match, popularity, q.Status, "",
		}); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return b.String(), nil
}

package report

import (
	"fmt"
	"sort"
	"strings"

	"soundcheck/internal/render"
	"soundcheck/internal/shows"
	"soundcheck/internal/state"
)

var statusLabels = []struct {
	status string
	label  string
}{
	{state.StatusVerified, "Verified"},
	{state.StatusRejected, "Rejected"},
	{state.StatusOverrideNull, "Override (null)"},
}

// Inventory renders where every tracked artist stands: counts by
// status, assigned coverage by venue, and coverage by role.
func Inventory(states *state.Store, files []*shows.File) string {
	var b strings.Builder
	b.WriteString("CURRENT INVENTORY\n")

	counts := make(map[string]int)
	for _, record := range states.All() {
		counts[record.Status]++
	}
	total := states.Len()
	if total > 0 {
		rows := make([][]string, 0, len(statusLabels)+1)
		for _, s := range statusLabels {
			count := counts[s.status]
			if count == 0 {
				continue
			}
			pct := count * 100 / total
			rows = append(rows, []string{s.label, fmt.Sprintf("%d", count), fmt.Sprintf("%d%%", pct)})
		}
		rows = append(rows, []string{"Total", fmt.Sprintf("%d", total), ""})
		b.WriteString(render.Table([]string{"Status", "Count", "%"}, rows,
			[]render.Alignment{render.Left, render.Right, render.Right}))
		b.WriteString("\n")
	} else {
		b.WriteString("No video states recorded.\n")
	}

	venueRows, roleRows := coverage(files)
	if len(venueRows) > 0 {
		b.WriteString("\nCOVERAGE BY VENUE\n")
		b.WriteString(render.Table([]string{"Venue", "Slots", "Assigned", "Missing"}, venueRows,
			[]render.Alignment{render.Left, render.Right, render.Right, render.Right}))
		b.WriteString("\n")
		b.WriteString("\nCOVERAGE BY ROLE\n")
		b.WriteString(render.Table([]string{"Role", "Slots", "Assigned", "Missing"}, roleRows,
			[]render.Alignment{render.Left, render.Right, render.Right, render.Right}))
		b.WriteString("\n")
	}

	if reasons := TopRejectionReasons(states, 10); len(reasons) > 0 {
		b.WriteString("\nTOP REJECTION REASONS\n")
		rows := make([][]string, 0, len(reasons))
		for _, rc := range reasons {
			rows = append(rows, []string{rc.Reason, fmt.Sprintf("%d", rc.Count)})
		}
		b.WriteString(render.Table([]string{"Reason", "Count"}, rows,
			[]render.Alignment{render.Left, render.Right}))
		b.WriteString("\n")
	}

	return b.String()
}

type slotTally struct {
	slots    int
	assigned int
}

func coverage(files []*shows.File) (venueRows, roleRows [][]string) {
	venues := make(map[string]*slotTally)
	var venueOrder []string
	roles := map[string]*slotTally{"Headliner": {}, "Opener": {}}

	for _, file := range files {
		for _, show := range file.Shows {
			venue := show.Venue()
			tally := venues[venue]
			if tally == nil {
				tally = &slotTally{}
				venues[venue] = tally
				venueOrder = append(venueOrder, venue)
			}
			for _, slot := range show.Slots() {
				role := "Headliner"
				if slot.IsOpener {
					role = "Opener"
				}
				tally.slots++
				roles[role].slots++
				if id, _ := show.VideoID(slot.IDKey); id != "" {
					tally.assigned++
					roles[role].assigned++
				}
			}
		}
	}

	sort.Strings(venueOrder)
	for _, venue := range venueOrder {
		t := venues[venue]
		venueRows = append(venueRows, tallyRow(venue, t))
	}
	for _, role := range []string{"Headliner", "Opener"} {
		if t := roles[role]; t.slots > 0 {
			roleRows = append(roleRows, tallyRow(role, t))
		}
	}
	return venueRows, roleRows
}

func tallyRow(label string, t *slotTally) []string {
	return []string{
		label,
		fmt.Sprintf("%d", t.slots),
		fmt.Sprintf("%d", t.assigned),
		fmt.Sprintf("%d", t.slots-t.assigned),
	}
}

// ReasonCount is one normalized rejection reason with its frequency.
type ReasonCount struct {
	Reason string
	Count  int
}

// TopRejectionReasons buckets rejection reasons by dropping the
// per-video specifics (view counts, channel names, ages) so repeated
// failure modes surface, and returns the most common ones.
func TopRejectionReasons(states *state.Store, limit int) []ReasonCount {
	counts := make(map[string]int)
	for _, record := range states.All() {
		if record.Status != state.StatusRejected {
			continue
		}
		for _, reason := range strings.Split(record.Reason, "; ") {
			reason = strings.TrimSpace(reason)
			if reason == "" {
				continue
			}
			counts[normalizeReason(reason)]++
		}
	}

	out := make([]ReasonCount, 0, len(counts))
	for reason, count := range counts {
		out = append(out, ReasonCount{Reason: reason, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func normalizeReason(reason string) string {
	switch {
	case strings.Contains(reason, "view count") && strings.Contains(reason, "exceeds"):
		return "view count exceeds cap"
	case strings.Contains(reason, "non-matching channel"):
		return "non-matching channel (high subscribers)"
	case strings.Contains(reason, "metadata unavailable"):
		return "metadata unavailable"
	case strings.Contains(reason, "not found on enrichment source"):
		return "no enrichment match + channel mismatch"
	case strings.Contains(reason, "years old"):
		return "video too old + no channel match"
	case strings.Contains(reason, "placeholder image"):
		return "venue placeholder image"
	}
	return reason
}

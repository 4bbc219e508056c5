package report

import (
	"fmt"
	"strings"
	"time"

	"soundcheck/internal/render"
)

// Daily renders the nightly run report: the change counts, a table per
// section, and the no-preview queue.
func Daily(delta Delta, queue []QueueRow, profiles Profiles, now time.Time) string {
	var b strings.Builder
	b.WriteString("LOCAL SOUNDCHECK — DAILY VIDEO REPORT\n")
	b.WriteString(now.Format("Jan 02, 2006"))
	b.WriteString("\n\n")

	b.WriteString("TONIGHT'S CHANGES\n")
	fmt.Fprintf(&b, "  Videos verified: %d\n", len(delta.Verified))
	if recovered := delta.RecoveredCount(); recovered > 0 {
		fmt.Fprintf(&b, "  Recovered (previously rejected): %d\n", recovered)
	}
	fmt.Fprintf(&b, "  Videos rejected: %d\n", len(delta.Rejected))
	fmt.Fprintf(&b, "  Already verified (skipped): %d\n", delta.AlreadyVerified)
	fmt.Fprintf(&b, "  Overrides (skipped): %d\n\n", delta.Overrides)

	if len(delta.Verified) > 0 {
		b.WriteString("NEW VERIFIED VIDEOS\n")
		rows := make([][]string, 0, len(delta.Verified))
		for _, v := range delta.Verified {
			detail := v.Detail
			if v.Recovered {
				detail = "recovered; " + detail
			}
			rows = append(rows, []string{
				v.Artist, v.Venue, v.Date, profiles.Indicator(v.Artist),
				"youtube.com/watch?v=" + v.VideoID, detail,
			})
		}
		b.WriteString(render.Table(
			[]string{"Artist", "Venue", "Date", "Spotify", "Video", "Confidence"},
			rows, nil))
		b.WriteString("\n\n")
	}

	if len(delta.Rejected) > 0 {
		b.WriteString("REJECTED CANDIDATES\n")
		rows := make([][]string, 0, len(delta.Rejected))
		for _, r := range delta.Rejected {
			rows = append(rows, []string{
				r.Artist, r.Venue, r.Date, profiles.Indicator(r.Artist),
				"youtube.com/watch?v=" + r.VideoID, r.Detail,
			})
		}
		b.WriteString(render.Table(
			[]string{"Artist", "Venue", "Date", "Spotify", "Candidate", "Reason"},
			rows, nil))
		b.WriteString("\n\n")
	}

	if len(queue) > 0 {
		fmt.Fprintf(&b, "NO PREVIEW QUEUE (%d total)\n", len(queue))
		rows := make([][]string, 0, len(queue))
		for _, q := range queue {
			rows = append(rows, []string{
				q.Artist, q.Venue, q.Date, profiles.Indicator(q.Artist), q.Status,
			})
		}
		b.WriteString(render.Table(
			[]string{"Artist", "Venue", "Date", "Spotify", "Status"},
			rows, nil))
		b.WriteString("\n\n")
	}

	b.WriteString("Generated: ")
	b.WriteString(now.Format("Mon Jan 02, 2006 3:04 PM"))
	b.WriteString("\n")
	return b.String()
}

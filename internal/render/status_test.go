package render

import (
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestStatusLineNoColor(t *testing.T) {
	got := StatusLine("Soundcheck", Error, "Not configured", false)
	want := fmt.Sprintf("%s%-*s %s", Indent, LabelWidth, "Soundcheck:", "[ERROR] Not configured")
	if got != want {
		t.Fatalf("StatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestStatusLineWithColor(t *testing.T) {
	got := StatusLine("Soundcheck", OK, "Ready", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestStatusLineWithoutMessage(t *testing.T) {
	got := StatusLine("Spotify", Warn, "", false)
	if !strings.HasSuffix(got, "[WARN]") {
		t.Fatalf("expected bare bracket, got %q", got)
	}
}

func TestSectionHeaderRuleLength(t *testing.T) {
	lines := SectionHeader("Run summary", false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "== Run summary ==" {
		t.Fatalf("unexpected header line %q", lines[0])
	}
	if len(lines[1]) != len(lines[0]) || strings.Trim(lines[1], "-") != "" {
		t.Fatalf("expected matching rule, got %q", lines[1])
	}
}

func TestColorizeNonFile(t *testing.T) {
	if Colorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Status classifies a status line for its bracket label and color.
type Status int

const (
	Info Status = iota
	OK
	Warn
	Error
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	// LabelWidth is the padded width of the "Label:" column.
	LabelWidth = 20
	// Indent prefixes every status line under a section header.
	Indent = "  "
)

var statusLabels = map[Status]string{
	Info:  "INFO",
	OK:    "OK",
	Warn:  "WARN",
	Error: "ERROR",
}

var statusColors = map[Status]string{
	Info:  ansiBlue,
	OK:    ansiGreen,
	Warn:  ansiYellow,
	Error: ansiRed,
}

// StatusLine formats one aligned "Label: [KIND] message" line.
func StatusLine(label string, status Status, message string, colorize bool) string {
	bracket := "[" + statusLabels[status] + "]"
	if message != "" {
		bracket += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", Indent, LabelWidth, label+":", bracket)
	if colorize {
		if color := statusColors[status]; color != "" {
			return color + line + ansiReset
		}
	}
	return line
}

// SectionHeader returns a "== Title ==" line with a matching rule under it.
func SectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

// Colorize reports whether writer is a terminal worth coloring.
func Colorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

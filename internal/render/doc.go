// Package render holds the terminal output primitives shared by the CLI
// and the report builders: rounded string tables, labeled status lines,
// and section headers. Color is the caller's decision; Colorize reports
// whether a writer is a terminal.
package render

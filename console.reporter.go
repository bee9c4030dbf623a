package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Reporter renders user facing outcomes. The console implementation writes
// to the terminal; tests can record or discard them.
type Reporter interface {
	Success(msg string)
	Failure(msg string)
	Notice(msg string)
	Table(title string, headers []string, rows [][]string)
}

var _ Reporter = (*consoleReporter)(nil) // ensure consoleReporter implements Reporter.

type consoleReporter struct {
	w io.Writer
}

// NewConsoleReporter provides a Reporter printing plain text to w.
func NewConsoleReporter(w io.Writer) Reporter {
	return &consoleReporter{w: w}
}

func (cr *consoleReporter) Success(msg string) {
	fmt.Fprintf(cr.w, "\n[ok] %s\n", msg)
}

func (cr *consoleReporter) Failure(msg string) {
	fmt.Fprintf(cr.w, "\n[error] %s\n", msg)
}

func (cr *consoleReporter) Notice(msg string) {
	fmt.Fprintln(cr.w, msg)
}

// Table prints rows aligned in columns under an underlined title.
func (cr *consoleReporter) Table(title string, headers []string, rows [][]string) {
	fmt.Fprintf(cr.w, "\n%s\n%s\n", title, strings.Repeat("=", len(title)))
	tw := tabwriter.NewWriter(cr.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

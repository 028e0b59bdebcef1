// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/outreach-agent/internal/run"
	"github.com/jonathan/outreach-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintVerdict outputs a human-readable summary of a quality verdict.
func (p *Printer) PrintVerdict(verdict *types.Verdict) {
	if verdict == nil {
		return
	}

	var sb strings.Builder

	status := "FAIL"
	if verdict.Pass {
		status = "PASS"
	}
	sb.WriteString(fmt.Sprintf("Job:      %s\n", verdict.JobID))
	sb.WriteString(fmt.Sprintf("Stage:    %s\n", verdict.Stage))
	sb.WriteString(fmt.Sprintf("Result:   %s\n", status))

	failing := verdict.FailingCriteria()
	if len(failing) > 0 {
		sb.WriteString("\nFailing criteria:\n")
		count := min(len(failing), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s", failing[i].CriterionID))
			if failing[i].Note != "" {
				sb.WriteString(fmt.Sprintf(": %s", failing[i].Note))
			}
			sb.WriteString("\n")
		}
		if len(failing) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(failing)-maxItemsToShow))
		}
	}

	if verdict.Feedback != "" {
		sb.WriteString(fmt.Sprintf("\nFeedback: %s\n", verdict.Feedback))
	}

	p.printBox("Quality Verdict", strings.TrimRight(sb.String(), "\n"))
}

// PrintRunSummary outputs the aggregate counters for a finished run.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRunSummary(name string, stats types.RunStats) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Run:                  %s\n", name))
	sb.WriteString(fmt.Sprintf("Attempted:            %d\n", stats.Attempted))
	sb.WriteString(fmt.Sprintf("Passed first try:     %d\n", stats.PassedFirstTry))
	sb.WriteString(fmt.Sprintf("Passed after refine:  %d\n", stats.PassedAfterRefine))
	sb.WriteString(fmt.Sprintf("Failed:               %d", stats.Failed))

	p.printBox("Run Summary", sb.String())
}

// PrintRunList outputs one line per run, newest first.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRunList(infos []run.Info) {
	if len(infos) == 0 {
		fmt.Fprintln(p.out, "No runs found.")
		return
	}

	fmt.Fprintf(p.out, "%-40s %-20s %9s %7s %7s\n", "RUN", "STARTED", "ATTEMPTED", "PASSED", "FAILED")
	for _, info := range infos {
		passed := info.Stats.PassedFirstTry + info.Stats.PassedAfterRefine
		fmt.Fprintf(p.out, "%-40s %-20s %9d %7d %7d\n",
			info.Name,
			info.StartedAt.Format("2006-01-02 15:04:05"),
			info.Stats.Attempted,
			passed,
			info.Stats.Failed,
		)
	}
}

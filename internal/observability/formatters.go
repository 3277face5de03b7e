// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/staffing-engine/internal/types"
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
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintFitResults outputs a human-readable summary of a candidate ranking.
func (p *Printer) PrintFitResults(results []types.FitResult) {
	if len(results) == 0 {
		p.printBox("Fit Ranking", "no candidates")
		return
	}

	var sb strings.Builder
	count := min(len(results), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := results[i]
		sb.WriteString(fmt.Sprintf("%d. %s  score %.4f\n", i+1, r.PersonID, r.FitScore))
		for _, reason := range r.Reasons {
			if reason.Code == types.ReasonHardSkillGap {
				sb.WriteString(fmt.Sprintf("   gap: %s\n", reason.Detail))
			}
		}
	}
	if len(results) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(results)-maxItemsToShow))
	}

	p.printBox("Fit Ranking", sb.String())
}

// PrintRateResolution outputs the audit breakdown of a rate resolution.
func (p *Printer) PrintRateResolution(res *types.RateResolution) {
	if res == nil {
		return
	}

	var sb strings.Builder
	for _, line := range res.Breakdown {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("precedence: %s", res.PrecedenceApplied))

	p.printBox("Rate Resolution", sb.String())
}

// PrintTeamPlan outputs a summary of a team plan.
func (p *Printer) PrintTeamPlan(plan *types.TeamPlan) {
	if plan == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Mode:  %s\n", plan.Mode))
	sb.WriteString(fmt.Sprintf("Score: %.4f  Cost: %.2f\n", plan.TotalScore, plan.TotalCost))
	sb.WriteString("\n")

	count := min(len(plan.Assignments), maxItemsToShow)
	for i := 0; i < count; i++ {
		a := plan.Assignments[i]
		sb.WriteString(fmt.Sprintf("• %s → %s (%.4f @ %.2f)\n", a.RequestID, a.PersonID, a.FitScore, a.Rate))
	}
	if len(plan.Assignments) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(plan.Assignments)-maxItemsToShow))
	}

	for _, c := range plan.ConstraintsSatisfied {
		mark := "ok"
		if !c.Satisfied {
			mark = "VIOLATED"
		}
		sb.WriteString(fmt.Sprintf("%s [%s] %s\n", mark, c.Kind, c.Detail))
	}

	p.printBox("Team Plan", sb.String())
}

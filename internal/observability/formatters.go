// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/interview-planner/internal/planner"
	"github.com/jonathan/interview-planner/internal/types"
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

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintProfile outputs the candidate profile and the skills the plan will cover.
func (p *Printer) PrintProfile(profile types.CandidateProfile, skills []string) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Role:       %s\n", orDash(profile.Role)))
	sb.WriteString(fmt.Sprintf("Company:    %s\n", orDash(profile.Company)))
	sb.WriteString(fmt.Sprintf("Experience: %s (%s)\n", orDash(profile.Experience), planner.ExperienceLevel(profile.Experience)))
	if profile.Focus != "" {
		sb.WriteString(fmt.Sprintf("Focus:      %s\n", profile.Focus))
	}
	if profile.Industry != "" {
		sb.WriteString(fmt.Sprintf("Industry:   %s\n", profile.Industry))
	}

	if len(skills) > 0 {
		sb.WriteString("\nSkills:\n")
		for _, skill := range skills {
			sb.WriteString(fmt.Sprintf("  • %s\n", skill))
		}
	}

	p.printBox("CANDIDATE PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPlan outputs one line per plan step.
func (p *Printer) PrintPlan(plan planner.Plan) {
	if len(plan) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d steps\n\n", len(plan)))
	for i, step := range plan {
		sb.WriteString(fmt.Sprintf("%d. %-22s %s", i+1, step.Phase, step.Kind))
		if step.Skill != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", step.Skill))
		}
		sb.WriteString("\n")
	}

	p.printBox("INTERVIEW PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTurn outputs a candidate answer and the interviewer reply it produced.
// answer is empty for the opening turn.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintTurn(n int, answer string, turn types.Turn) {
	if answer != "" {
		fmt.Fprintf(p.out, "[%d] candidate: %s\n", n, answer)
	}
	status := ""
	if turn.Done {
		status = " (done)"
	}
	fmt.Fprintf(p.out, "[%d] interviewer <%s>%s: %s\n", n, turn.Phase, status, turn.Message)
}

// PrintEvaluation outputs the score, summary, and feedback lists of a report.
func (p *Printer) PrintEvaluation(eval *types.Evaluation) {
	if eval == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score:     %.1f / 10\n", eval.Score))
	sb.WriteString(fmt.Sprintf("Questions: %d   Responses: %d\n", eval.TotalQuestions, eval.TotalResponses))
	sb.WriteString(fmt.Sprintf("Duration:  %ds   Reason: %s\n", eval.DurationSeconds, eval.CompletionReason))
	if len(eval.SkillsCovered) > 0 {
		sb.WriteString(fmt.Sprintf("Skills:    %s\n", strings.Join(eval.SkillsCovered, ", ")))
	}
	sb.WriteString("\n")
	sb.WriteString(wrap(eval.Summary, boxWidth-4))
	sb.WriteString("\n")

	writeList(&sb, "Strengths", eval.Strengths)
	writeList(&sb, "Improvements", eval.Improvements)

	p.printBox("INTERVIEW EVALUATION", strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n" + title + ":\n")
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// wrap breaks text on word boundaries so each line fits in width runes
func wrap(text string, width int) string {
	var lines []string
	var line []rune
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		if len(line) > 0 && len(line)+1+len(w) > width {
			lines = append(lines, string(line))
			line = nil
		}
		if len(line) > 0 {
			line = append(line, ' ')
		}
		line = append(line, w...)
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	return strings.Join(lines, "\n")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

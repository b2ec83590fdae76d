// Package format renders aggregation results as terminal text.
package format

import (
	"fmt"
	"strings"

	"github.com/godilite/intra-stats/internal/service"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	loginWidth = 15
	valueWidth = 10
)

var titleCaser = cases.Title(language.English)

// Percentage renders a scalar statistic.
func Percentage(v float64) string {
	return fmt.Sprintf("result: %.2f%%", v)
}

// Month capitalizes an API pool month ("july" -> "July").
func Month(m string) string {
	return titleCaser.String(m)
}

// NetworkTable lays out the three interaction views side by side, each sorted
// by count and truncated to top entries (top <= 0 keeps all of them). Rows
// where one view runs out are padded with blanks.
func NetworkTable(login string, network service.Network, top int) string {
	columns := [3][]service.Interaction{
		network.EvaluatedBy.Ranked(top),
		network.Evaluated.Ranked(top),
		network.Combined.Ranked(top),
	}
	rows := max(len(columns[0]), len(columns[1]), len(columns[2]))

	var b strings.Builder
	fmt.Fprintf(&b, "Evaluation Network Analysis for %s - Top Most Interacted With:\n\n", login)
	b.WriteString("Your Evaluator, times, average score  | You Evaluated, times, average score   | Combined\n")
	b.WriteString(strings.Repeat("-", 3*loginWidth+55))
	b.WriteByte('\n')

	for i := range rows {
		cells := make([]string, len(columns))
		for c, col := range columns {
			cells[c] = cell(col, i)
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, " | "), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

func cell(col []service.Interaction, i int) string {
	if i >= len(col) {
		return fmt.Sprintf("%-*s %*s %*s", loginWidth, "", valueWidth, "", valueWidth, "")
	}
	e := col[i]
	return fmt.Sprintf("%-*s %-*d %-*.2f", loginWidth, e.Login, valueWidth, e.Count, valueWidth, e.Average)
}

// PrettyStatus maps the API's enrollment status to display text. Unknown
// statuses pass through unchanged.
func PrettyStatus(status string) string {
	switch status {
	case "searching_a_group":
		return "Searching For A Group"
	case "in_progress":
		return "In Progress"
	case "waiting_for_correction":
		return "Waiting For Evaluation"
	case "finished":
		return "Finished"
	default:
		return status
	}
}

// StatusOverview renders every project of a piscine cohort.
func StatusOverview(report service.StatusReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "There are a total of %d Pisciners.\n\n", report.CohortSize)

	for _, p := range report.Projects {
		fmt.Fprintf(&b, "%s (%d Pisciners - %.2f%%):\n", p.Name, p.Population, p.CohortPercentage)
		fmt.Fprintf(&b, "  Average Grade: %.2f\n", p.AverageMark)
		for _, s := range p.Statuses {
			fmt.Fprintf(&b, "    %s: %d (%.2f%%)\n", PrettyStatus(s.Status), s.Count, s.Percentage)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ProjectDetail renders one project's summary followed by every student's
// attempts.
func ProjectDetail(d service.ProjectDrillDown) string {
	var b strings.Builder
	s := d.Summary
	fmt.Fprintf(&b, "Overview of %s\n", s.Name)
	fmt.Fprintf(&b, "Pisciners: %d (out of %d - %.2f%%)\n", s.Population, d.CohortSize, s.CohortPercentage)
	fmt.Fprintf(&b, "Tries: %d\n", d.Tries)
	fmt.Fprintf(&b, "Average Grade: %.2f\n", s.AverageMark)
	for _, st := range s.Statuses {
		fmt.Fprintf(&b, "%s: %d (%.2f%%)\n", PrettyStatus(st.Status), st.Count, st.Percentage)
	}
	b.WriteString("\n\n")

	for _, student := range d.Students {
		noun := "tries"
		if student.Attempts == 1 {
			noun = "try"
		}
		fmt.Fprintf(&b, "%s %d %s Final Mark %s:\n", student.Login, student.Attempts, noun, optionalMark(student.FinalMark))
		for _, t := range student.Teams {
			result := PrettyStatus(student.Status)
			if t.FinalMark != nil {
				result = fmt.Sprint(*t.FinalMark)
			}
			fmt.Fprintf(&b, "    %s: %s\n", t.Name, result)
		}
		if student.Status == "searching_a_group" {
			b.WriteString("Searching A Group\n")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ExamReport renders an exam's registration comparison.
func ExamReport(reg service.ExamRegistration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Information for %s\n\n", reg.ExamName)
	fmt.Fprintf(&b, "Registered to Event: %d\n", reg.EventSubscribers)
	fmt.Fprintf(&b, "Registered to Project: %d\n", reg.ProjectRegistrations)
	fmt.Fprintf(&b, "Difference: %d\n", reg.Difference)
	return b.String()
}

// Columns distributes items top-to-bottom over n columns, each padded to its
// widest item.
func Columns(items []string, n int) string {
	if len(items) == 0 || n <= 0 {
		return ""
	}
	rows := (len(items) + n - 1) / n

	var table [][]string
	for i := 0; i < len(items); i += rows {
		table = append(table, items[i:min(i+rows, len(items))])
	}

	widths := make([]int, len(table))
	for c, col := range table {
		for _, item := range col {
			widths[c] = max(widths[c], len(item))
		}
	}

	var b strings.Builder
	for r := range rows {
		for c, col := range table {
			if r < len(col) {
				fmt.Fprintf(&b, "%-*s    ", widths[c], col[r])
			}
		}
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

func optionalMark(m *int) string {
	if m == nil {
		return "None"
	}
	return fmt.Sprint(*m)
}

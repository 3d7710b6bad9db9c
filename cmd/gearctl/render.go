package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mind-engage/gearscore/internal/grading"
)

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	headerStyle = lipgloss.NewStyle().Bold(true)
)

var tierColors = map[grading.Tier]lipgloss.Color{
	grading.TierBricked:      "9",
	grading.TierPerfect:      "208",
	grading.TierGraduate:     "11",
	grading.TierNearGraduate: "12",
	grading.TierTrash:        "8",
}

const barWidth = 20

func severityStyle(s grading.Severity) lipgloss.Style {
	switch s {
	case grading.SeverityPass:
		return passStyle
	case grading.SeverityFail:
		return failStyle
	case grading.SeverityWarn:
		return warnStyle
	default:
		return mutedStyle
	}
}

// renderResult prints the score line, a progress bar and the log.
func renderResult(w io.Writer, res grading.GearEvaluationResult) {
	tier := lipgloss.NewStyle().Bold(true).Foreground(tierColors[res.Tier])
	fmt.Fprintf(w, "%s  %s\n", tier.Render(fmt.Sprintf("%d%%", res.Score)), tier.Render(res.TierLabel))

	filled := min(max(res.Score*barWidth/100, 0), barWidth)
	fmt.Fprintf(w, "%s%s\n",
		tier.Render(strings.Repeat("█", filled)),
		mutedStyle.Render(strings.Repeat("░", barWidth-filled)))

	for _, e := range res.Log {
		fmt.Fprintln(w, severityStyle(e.Severity).Render(e.String()))
	}
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("weight %d, earned %d, bricks %d",
		res.Tally.TotalWeight, res.Tally.EarnedScore, res.Tally.BrickCount)))
}

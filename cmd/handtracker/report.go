package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"handtracker/internal/batch"
	"handtracker/internal/hand"
	"handtracker/internal/stats"
)

// Static styles for report output
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Width(22)
)

// renderReport formats a batch outcome for the terminal.
func renderReport(report *batch.Report) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Import Report") + "\n\n")
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Accepted"),
		successStyle.Render(fmt.Sprintf("%d", len(report.Accepted)))))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Duplicates"),
		warningStyle.Render(fmt.Sprintf("%d", report.Duplicates))))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Failed"),
		errorStyle.Render(fmt.Sprintf("%d", len(report.Failures)))))

	for _, f := range report.FileFailures {
		b.WriteString(errorStyle.Render(fmt.Sprintf("  file %s skipped: %s", f.Source, f.Reason)) + "\n")
	}
	for _, f := range report.Failures {
		id := f.HandID
		if id == "" {
			id = "?"
		}
		b.WriteString(fmt.Sprintf("  hand %s (%s): %s\n", id, f.Source, f.Reason))
	}
	return b.String()
}

// renderStatistics formats a statistics snapshot for the terminal.
func renderStatistics(s stats.Statistics) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Statistics") + "\n\n")

	line := func(label string, value string) {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render(label), value))
	}

	line("Hands", fmt.Sprintf("%d", s.Hands))
	line("VPIP", fmtRate(s.VPIP))
	line("PFR", fmtRate(s.PFR))
	line("3-Bet", fmtRate(s.ThreeBet))
	line("Fold to 3-Bet", fmtRate(s.FoldToThreeBet))
	line("4-Bet", fmtRate(s.FourBet))
	line("Cold Call", fmtRate(s.ColdCall))
	line("C-Bet Flop", fmtRate(s.CBet.Flop))
	line("C-Bet Turn", fmtRate(s.CBet.Turn))
	line("C-Bet River", fmtRate(s.CBet.River))
	line("Fold to C-Bet Flop", fmtRate(s.FoldToCBet.Flop))
	line("Check-Raise Flop", fmtRate(s.CheckRaise.Flop))
	if s.AggressionFactor != nil {
		line("Aggression Factor", fmt.Sprintf("%.2f", *s.AggressionFactor))
	} else {
		line("Aggression Factor", "-")
	}
	line("Net", fmtMoney(s.NetCents))
	line("Net (bb)", fmt.Sprintf("%+.1f", s.NetBB))
	if s.WinRateBB100 != nil {
		line("bb/100", fmt.Sprintf("%+.2f", *s.WinRateBB100))
	}
	line("Showdown Net", fmtMoney(s.BlueLineCents))
	line("Non-Showdown Net", fmtMoney(s.RedLineCents))

	if len(s.Positions) > 0 {
		b.WriteString("\n" + headerStyle.Render("By Position") + "\n\n")
		positions := make([]string, 0, len(s.Positions))
		for pos := range s.Positions {
			positions = append(positions, string(pos))
		}
		sort.Strings(positions)
		for _, pos := range positions {
			ps := s.Positions[hand.Position(pos)]
			b.WriteString(fmt.Sprintf("%s hands=%d vpip=%s pfr=%s net=%+.1fbb\n",
				labelStyle.Render(pos), ps.Hands, fmtRate(ps.VPIP), fmtRate(ps.PFR), ps.NetBB))
		}
	}

	if len(s.Trend) > 0 {
		b.WriteString("\n" + headerStyle.Render("Monthly Trend") + "\n\n")
		for _, point := range s.Trend {
			b.WriteString(fmt.Sprintf("%s hands=%d net=%+.1fbb\n",
				labelStyle.Render(point.Bucket), point.Hands, point.NetBB))
		}
	}
	return b.String()
}

// fmtRate renders a percentage rate, "-" when the rate is undefined
// because no opportunity ever arose.
func fmtRate(rate *float64) string {
	if rate == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *rate)
}

func fmtMoney(cents int64) string {
	styled := successStyle
	if cents < 0 {
		styled = errorStyle
	}
	return styled.Render(fmt.Sprintf("%+.2f", float64(cents)/100))
}

package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/parada/internal/contract"
)

const (
	statusProgressBarWidth = 10
	maxWarnings            = 8
)

// writeWarnings lists up to limit warnings and counts the rest.
func writeWarnings(b *strings.Builder, warnings []string, limit int) {
	if len(warnings) == 0 {
		return
	}
	b.WriteString("\n")
	for i, w := range warnings {
		if limit > 0 && i == limit {
			b.WriteString(Dim(fmt.Sprintf("  ... and %d more", len(warnings)-limit)) + "\n")
			return
		}
		b.WriteString(StyleYellow.Render("  WARNING: "+w) + "\n")
	}
}

// FormatStatus renders the four-phase dashboard.
func FormatStatus(resp *contract.StatusResponse, now time.Time) string {
	var b strings.Builder
	sum := resp.Summary

	title := sum.Title
	if title == "" {
		title = "Parada"
	}
	b.WriteString(Bold(title) + "  " + RenderProgress(sum.OverallProgress, 20) + "\n")
	if sum.CurrentPhase != "" {
		for _, p := range resp.Phases {
			if p.ID == sum.CurrentPhase {
				b.WriteString(Dim("Fase atual: ") + p.Icon + " " + p.Name + "\n")
			}
		}
	}
	b.WriteString("\n")

	headers := []string{"FASE", "FONTE", "STATUS", "PROGRESSO", "TOTAL", "OK", "ATRASO", "CRÍTICO", "TÉRMINO"}
	rows := make([][]string, 0, len(resp.Phases))
	for _, p := range resp.Phases {
		finish := Dim("--")
		if p.Finish != nil {
			finish = ShortDate(p.Finish)
			if p.DaysRemaining > 0 {
				finish += Dim(fmt.Sprintf(" (%dd)", p.DaysRemaining))
			}
		}
		if pill := PacePill(p.Pace.Level); pill != "" {
			finish += " " + pill
		}
		delayed := strconv.Itoa(p.Delayed)
		if p.Delayed > 0 {
			delayed = StyleRed.Render(delayed)
		}
		rows = append(rows, []string{
			p.Icon + " " + Bold(p.Name),
			FormatBadge(p.Source),
			PhaseStatusPill(p.Status),
			RenderProgress(p.Progress, statusProgressBarWidth),
			strconv.Itoa(p.Total),
			strconv.Itoa(p.Completed),
			delayed,
			strconv.Itoa(p.Critical),
			finish,
		})
	}
	b.WriteString(RenderTable(headers, rows, 4, 5, 6, 7))

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s, %s, %s, %s\n",
		StyleGreen.Render(fmt.Sprintf("%d Concluídas", sum.CountsCompleted)),
		StyleRed.Render(fmt.Sprintf("%d Atrasadas", sum.CountsDelayed)),
		StyleYellow.Render(fmt.Sprintf("%d Críticas", sum.CountsCritical)),
		Dim(fmt.Sprintf("%d no total", sum.CountsTotal))))

	if len(resp.Milestones) > 0 {
		b.WriteString("\n" + Header("Marcos") + "\n")
		for _, m := range resp.Milestones {
			when := Dim("sem data")
			if m.Date != nil {
				when = ShortDate(m.Date) + " " + RelativeDateStyled(*m.Date, now)
			}
			b.WriteString(fmt.Sprintf("  %s %s  %s\n", StylePurple.Render("◆"), m.Name, when))
		}
	}

	if len(resp.Sources) > 0 {
		b.WriteString("\n")
		for _, s := range resp.Sources {
			b.WriteString(Dim(fmt.Sprintf("  %s ", strings.ToUpper(string(s.Format)))) +
				s.Source + Dim(fmt.Sprintf(" · %d registros · %s", s.Records, HumanTimestamp(s.IngestedAt, now))) + "\n")
		}
	}

	writeWarnings(&b, resp.Warnings, maxWarnings)

	return RenderBox("Status", b.String())
}

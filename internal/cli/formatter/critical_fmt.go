package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/parada/internal/contract"
)

// FormatCriticalPath renders the timing table of a critical path analysis.
// Times are shown as offsets from the start of the network.
func FormatCriticalPath(resp *contract.CriticalPathResponse) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s %s  %s\n",
		FormatBadge(resp.Format),
		Bold(fmt.Sprintf("Duração do projeto: %s", FormatHours(resp.ProjectHours))),
		Dim(fmt.Sprintf("(%.1f dias úteis)", resp.ProjectDays))))
	if len(resp.Path) > 0 {
		b.WriteString(Dim("Caminho crítico: ") + StyleRed.Render(strings.Join(resp.Path, " → ")) + "\n")
	}
	b.WriteString("\n")

	if len(resp.Tasks) == 0 {
		b.WriteString(Dim("No tasks with durations.") + "\n")
	} else {
		headers := []string{"ID", "TAREFA", "DURAÇÃO", "ES", "EF", "LS", "LF", "FOLGA"}
		rows := make([][]string, 0, len(resp.Tasks))
		for _, t := range resp.Tasks {
			name := t.Name
			slack := FormatHours(t.Float)
			if t.Critical {
				name = StyleRedBold.Render(name)
				slack = StyleRed.Render(slack)
			}
			rows = append(rows, []string{
				t.ID,
				name,
				FormatHours(t.Hours),
				FormatHours(t.EarlyStart),
				FormatHours(t.EarlyFinish),
				FormatHours(t.LateStart),
				FormatHours(t.LateFinish),
				slack,
			})
		}
		b.WriteString(RenderTable(headers, rows, 2, 3, 4, 5, 6, 7))
	}

	writeWarnings(&b, resp.Warnings, maxWarnings)
	return b.String()
}

package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/parada/internal/contract"
	"github.com/alexanderramin/parada/internal/importer"
)

// FormatIngestResult summarises one ingestion.
func FormatIngestResult(res *contract.IngestResult) string {
	var b strings.Builder
	s := res.Snapshot

	switch {
	case res.Unchanged:
		b.WriteString(Dim("= ") + "Unchanged since snapshot " + TruncID(s.ID) + "\n")
	case s.ID == "":
		b.WriteString(StyleBlue.Render("○ ") + "Dry run, nothing stored\n")
	default:
		b.WriteString(StyleGreen.Render("✔ ") + "Stored snapshot " + TruncID(s.ID) + "\n")
	}
	b.WriteString(fmt.Sprintf("  %s %s  %s\n", FormatBadge(s.Format), Bold(s.Title), Dim(s.Source)))
	b.WriteString(fmt.Sprintf("  %d records, %d unclassified, overall %s\n",
		s.Records, s.Unclassified, RenderProgress(s.OverallProgress, 10)))

	var notes []string
	if res.Cached {
		notes = append(notes, "cache hit")
	}
	if res.Deduplicated {
		notes = append(notes, "shared with a concurrent ingest")
	}
	if res.Pruned > 0 {
		notes = append(notes, fmt.Sprintf("pruned %d old snapshot(s)", res.Pruned))
	}
	if len(notes) > 0 {
		b.WriteString(Dim("  "+strings.Join(notes, ", ")) + "\n")
	}

	if res.Report != nil {
		writeWarnings(&b, res.Report.Warnings, maxWarnings)
	}
	return b.String()
}

// FormatReport renders a validation report, errors first.
func FormatReport(rep *importer.Report) string {
	var b strings.Builder
	if rep.Valid {
		b.WriteString(StyleGreen.Render("✔ Valid") + "\n")
	} else {
		b.WriteString(StyleRed.Render(fmt.Sprintf("✖ Invalid (%d errors)", len(rep.Errors))) + "\n")
	}
	st := rep.Stats
	b.WriteString(Dim(fmt.Sprintf("  rows %d, valid %d, invalid %d, phases %d, assets %d, sub-activities %d",
		st.TotalRows, st.ValidRows, st.InvalidRows, st.Phases, st.Assets, st.SubActivities)) + "\n")

	if len(rep.Errors) > 0 {
		b.WriteString("\n")
		for _, e := range rep.Errors {
			b.WriteString(StyleRed.Render("  ERROR: "+e) + "\n")
		}
	}
	writeWarnings(&b, rep.Warnings, 0)
	if len(rep.Suggestions) > 0 {
		b.WriteString("\n")
		for _, s := range rep.Suggestions {
			b.WriteString(StyleBlue.Render("  hint: ") + s + "\n")
		}
	}
	return b.String()
}

package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/parada/internal/domain"
)

func FormatSnapshotList(snaps []*domain.Snapshot, now time.Time) string {
	if len(snaps) == 0 {
		return Dim("No snapshots stored. Run `parada ingest` first.") + "\n"
	}
	headers := []string{"ID", "FORMAT", "TITLE", "RECORDS", "WARN", "PROGRESS", "INGESTED"}
	rows := make([][]string, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, []string{
			TruncID(s.ID),
			FormatBadge(s.Format),
			s.Title,
			strconv.Itoa(s.Records),
			strconv.Itoa(s.Warnings),
			RenderCompactBar(s.OverallProgress, 10, false) + fmt.Sprintf(" %3d%%", s.OverallProgress),
			HumanTimestamp(s.CreatedAt, now),
		})
	}
	return RenderTable(headers, rows, 3, 4)
}

// FormatSnapshot renders the header fields of one snapshot.
func FormatSnapshot(s *domain.Snapshot) string {
	var b strings.Builder
	field := func(k, v string) {
		b.WriteString(Dim(fmt.Sprintf("%-13s", k)) + v + "\n")
	}
	field("ID", s.ID)
	field("Format", FormatBadge(s.Format))
	field("Title", Bold(s.Title))
	field("Source", s.Source)
	field("Hash", s.ContentHash)
	field("Records", strconv.Itoa(s.Records))
	field("Unclassified", strconv.Itoa(s.Unclassified))
	field("Warnings", strconv.Itoa(s.Warnings))
	field("Progress", RenderProgress(s.OverallProgress, 20))
	field("Ingested", s.CreatedAt.Format(time.RFC3339))
	return RenderBox("Snapshot", b.String())
}

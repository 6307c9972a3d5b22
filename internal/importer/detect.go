package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/parada/internal/domain"
)

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}

// DetectDelimiter guesses the field separator from the header line.
func DetectDelimiter(text string) rune {
	header := firstLine(text)
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}

// DetectFormat guesses the export format from its header, falling back to
// the file name when the header is inconclusive.
func DetectFormat(text, fileName string) (domain.SourceFormat, error) {
	header := firstLine(text)
	keys := make(map[string]bool)
	for _, cell := range strings.FieldsFunc(header, func(r rune) bool { return r == ';' || r == ',' }) {
		keys[columnKey(strings.Trim(cell, `"`))] = true
	}
	switch {
	case keys[columnKey(PFUS3Schema.Columns.Code)] || keys[columnKey(PFUS3Schema.Columns.Level)]:
		return domain.FormatPFUS3, nil
	case keys[columnKey(PreparationSchema.Columns.Name)] || keys[columnKey(PreparationSchema.Columns.Percent)]:
		return domain.FormatPreparation, nil
	}

	base := Fold(filepath.Base(fileName))
	switch {
	case strings.Contains(base, "prepar"):
		return domain.FormatPreparation, nil
	case strings.Contains(base, "pfus3"), strings.Contains(base, "operacional"):
		return domain.FormatPFUS3, nil
	}
	return "", fmt.Errorf("%w: header %q", ErrUnknownFormat, truncate(header, 60))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

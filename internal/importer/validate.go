package importer

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/alexanderramin/parada/internal/domain"
)

// Stats summarises a validation pass.
type Stats = domain.RowStats

// Report is the outcome of validating a parsed export.
type Report struct {
	Valid       bool     `json:"valid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions,omitempty"`
	Stats       Stats    `json:"stats"`
}

func (r *Report) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

var looseCodePattern = regexp.MustCompile(`^[\d.]+$`)

// Validate checks every row of t against schema and converts the valid ones
// into records. Missing required fields and unparseable levels are errors;
// unparseable percentages and dates and non-standard codes are warnings and
// fall back to 0 or no date.
func Validate(t *Table, schema Schema) ([]domain.ScheduleRecord, *Report) {
	rep := &Report{Errors: []string{}, Warnings: []string{}}
	rep.Stats.TotalRows = len(t.Rows)

	missingColumns := make(map[string]bool)
	for _, field := range schema.Required {
		if schema.Hierarchy == HierarchyByIndent && field == "level" {
			continue
		}
		col := schema.column(field)
		if !t.HasColumn(col) {
			missingColumns[field] = true
			rep.errorf("missing required column %q", col)
		}
	}

	var records []domain.ScheduleRecord
	for _, row := range t.Rows {
		rec, errs, warns := convertRow(row, schema, missingColumns)
		rep.Warnings = append(rep.Warnings, warns...)
		if len(errs) > 0 {
			rep.Stats.InvalidRows++
			if len(missingColumns) == 0 {
				rep.Errors = append(rep.Errors, errs...)
			}
			continue
		}
		rep.Stats.ValidRows++
		switch {
		case rec.Level == 2:
			rep.Stats.Phases++
		case rec.Level == 3:
			rep.Stats.Assets++
		case rec.Level >= 4:
			rep.Stats.SubActivities++
		}
		records = append(records, rec)
	}

	checkStructure(records, schema, rep)
	addSuggestions(rep)
	rep.Valid = len(rep.Errors) == 0
	return records, rep
}

func convertRow(row Row, schema Schema, missingColumns map[string]bool) (domain.ScheduleRecord, []string, []string) {
	var errs, warns []string
	c := schema.Columns
	rec := domain.ScheduleRecord{
		ID:           row.Get(c.ID),
		UniqueID:     row.Get(c.UniqueID),
		Row:          row.Line,
		Code:         row.Get(c.Code),
		Name:         strings.TrimRight(row.Raw(c.Name), " \t"),
		Duration:     row.Get(c.Duration),
		Predecessors: row.Get(c.Predecessors),
		Responsible:  row.Get(c.Responsible),
		Area:         row.Get(c.Area),
	}

	for _, field := range schema.Required {
		if missingColumns[field] || field == "level" {
			continue
		}
		col := schema.column(field)
		if isAbsent(row.Get(col)) {
			errs = append(errs, fmt.Sprintf("row %d: missing required field %q", row.Line, col))
		}
	}
	if len(missingColumns) > 0 {
		errs = append(errs, "required column missing")
	}

	if schema.Hierarchy == HierarchyByIndent {
		rec.Level = leadingIndent(rec.Name) / 4
	} else {
		raw := row.Get(c.Level)
		if isAbsent(raw) {
			if !missingColumns["level"] {
				errs = append(errs, fmt.Sprintf("row %d: missing required field %q", row.Line, c.Level))
			}
		} else if lvl, err := ParseLevel(raw); err != nil {
			errs = append(errs, fmt.Sprintf("row %d: %v", row.Line, err))
		} else {
			rec.Level = lvl
		}
	}

	if rec.Code != "" && !looseCodePattern.MatchString(rec.Code) {
		warns = append(warns, fmt.Sprintf("row %d: non-standard structural code %q", row.Line, rec.Code))
	}

	pct, w := percentField(row, c.Percent)
	warns = append(warns, w...)
	if pct != nil {
		rec.Percent = *pct
	}
	rec.PhysicalPercent, w = percentField(row, c.PhysicalPercent)
	warns = append(warns, w...)
	rec.BaselinePercent, w = percentField(row, c.BaselinePercent)
	warns = append(warns, w...)

	dates := []struct {
		col string
		dst **time.Time
	}{
		{c.Start, &rec.Start},
		{c.Finish, &rec.Finish},
		{c.BaselineStart, &rec.BaselineStart},
		{c.BaselineFinish, &rec.BaselineFinish},
		{c.ActualStart, &rec.ActualStart},
		{c.ActualFinish, &rec.ActualFinish},
	}
	for _, d := range dates {
		raw := row.Get(d.col)
		if isAbsent(raw) {
			continue
		}
		ts, err := ParseDate(raw, schema.DayFirst)
		if err != nil {
			warns = append(warns, fmt.Sprintf("row %d: %s: %v", row.Line, d.col, err))
			continue
		}
		*d.dst = &ts
	}

	return rec, errs, warns
}

// percentField parses an optional percentage column, clamping to [0,100].
func percentField(row Row, col string) (*float64, []string) {
	raw := row.Get(col)
	if isAbsent(raw) {
		return nil, nil
	}
	v, err := ParsePercent(raw)
	if err != nil {
		zero := 0.0
		return &zero, []string{fmt.Sprintf("row %d: %s: %v, using 0", row.Line, col, err)}
	}
	if v < 0 || v > 100 {
		clamped := min(max(v, 0), 100)
		return &clamped, []string{fmt.Sprintf("row %d: %s: %g outside 0-100, using %g", row.Line, col, v, clamped)}
	}
	return &v, nil
}

func checkStructure(records []domain.ScheduleRecord, schema Schema, rep *Report) {
	if len(records) == 0 && rep.Stats.TotalRows > 0 && len(rep.Errors) == 0 {
		rep.errorf("no valid rows found")
	}
	if !schema.RequirePhaseRows {
		return
	}
	if rep.Stats.Phases == 0 {
		rep.errorf("no level-2 phase rows found")
	}
	if rep.Stats.Assets == 0 {
		rep.warnf("no level-3 asset rows found")
	}
	var hasMaintenance, hasStartup bool
	for _, r := range records {
		hasMaintenance = hasMaintenance || hasCodePrefix(r.Code, "1.8")
		hasStartup = hasStartup || hasCodePrefix(r.Code, "1.9")
	}
	if !hasMaintenance {
		rep.warnf("no maintenance rows (code 1.8) found")
	}
	if !hasStartup {
		rep.warnf("no startup rows (code 1.9) found")
	}
}

func addSuggestions(rep *Report) {
	if rep.Stats.InvalidRows > 0 {
		rep.Suggestions = append(rep.Suggestions,
			fmt.Sprintf("fix the %d invalid row(s) before importing", rep.Stats.InvalidRows))
	}
	if len(rep.Warnings) > 5 {
		rep.Suggestions = append(rep.Suggestions,
			"review date and percentage formats; many rows fell back to defaults")
	}
	if rep.Stats.Phases > 0 && rep.Stats.Assets == 0 {
		rep.Suggestions = append(rep.Suggestions,
			"add level-3 rows under each phase so work fronts can be tracked")
	}
}

// Render formats the report as plain text.
func (r *Report) Render() string {
	var b strings.Builder
	status := "VALID"
	if !r.Valid {
		status = "INVALID"
	}
	fmt.Fprintf(&b, "Validation: %s\n", status)
	fmt.Fprintf(&b, "Rows: %d total, %d valid, %d invalid\n", r.Stats.TotalRows, r.Stats.ValidRows, r.Stats.InvalidRows)
	fmt.Fprintf(&b, "Structure: %d phases, %d assets, %d sub-activities\n", r.Stats.Phases, r.Stats.Assets, r.Stats.SubActivities)
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s (%d):\n", title, len(items))
		for _, it := range items {
			fmt.Fprintf(&b, "  - %s\n", it)
		}
	}
	section("Errors", r.Errors)
	section("Warnings", r.Warnings)
	section("Suggestions", r.Suggestions)
	return b.String()
}

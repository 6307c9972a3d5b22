package importer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// notAvailable holds placeholder cells that mean "no value".
var notAvailable = map[string]bool{"na": true, "n/a": true, "nd": true, "-": true, "--": true}

func isAbsent(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || notAvailable[strings.ToLower(s)]
}

// ParsePercent reads a completion percentage such as "45%", "100,0" or
// "12.5". Comma decimals are normalised to dots.
func ParsePercent(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid percentage %q", s)
	}
	return v, nil
}

// ParseLevel reads an outline level in [0,10].
func ParseLevel(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid level %q (expected an integer)", s)
	}
	if n < 0 || n > 10 {
		return 0, fmt.Errorf("level %d out of range (expected 0-10)", n)
	}
	return n, nil
}

var (
	dayFirstLayouts = []string{
		"2/1/2006 15:04:05", "2/1/2006 15:04", "2/1/2006",
		"2/1/06 15:04:05", "2/1/06 15:04", "2/1/06",
		"2-1-2006", "2.1.2006",
	}
	monthFirstLayouts = []string{
		"1/2/2006 3:04:05 PM", "1/2/2006 3:04 PM", "1/2/2006 15:04", "1/2/2006",
		"1/2/06 3:04 PM", "1/2/06 15:04", "1/2/06",
		"January 2, 2006 3:04 PM", "January 2, 2006", "Jan 2, 2006 3:04 PM", "Jan 2, 2006", "Jan 2 '06",
	}
	isoLayouts = []string{
		time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02",
	}
)

// ParseDate reads a schedule date. ISO dates are always accepted; slash
// dates are read day-first or month-first depending on the export. A leading
// weekday abbreviation such as "seg" or "Mon" is ignored.
func ParseDate(s string, dayFirst bool) (time.Time, error) {
	raw := strings.TrimSpace(s)
	v := stripWeekday(raw)
	layouts := monthFirstLayouts
	if dayFirst {
		layouts = dayFirstLayouts
	}
	for _, group := range [][]string{isoLayouts, layouts} {
		for _, layout := range group {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

var weekdays = map[string]bool{
	"seg": true, "ter": true, "qua": true, "qui": true, "sex": true, "sab": true, "dom": true,
	"mon": true, "tue": true, "wed": true, "thu": true, "fri": true, "sat": true, "sun": true,
}

func stripWeekday(s string) string {
	i := strings.IndexByte(s, ' ')
	if i <= 0 {
		return s
	}
	if !weekdays[strings.TrimSuffix(Fold(s[:i]), ".")] {
		return s
	}
	return strings.TrimSpace(s[i+1:])
}

var durationPattern = regexp.MustCompile(`^\s*(\d+(?:[.,]\d+)?)\s*([\p{L}?]*)`)

// Duration is the magnitude and unit of a free-text duration cell.
type Duration struct {
	Magnitude float64
	Unit      string
}

// ParseDuration reads "5 days", "0 hrs", "3d", "2,5 dias", "10 edays?" and
// similar cells. The unit is returned lower-cased without the trailing "?"
// MS Project uses for estimates.
func ParseDuration(s string) (Duration, bool) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return Duration{}, false
	}
	mag, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return Duration{}, false
	}
	unit := strings.TrimSuffix(Fold(m[2]), "?")
	return Duration{Magnitude: mag, Unit: unit}, true
}

// Hours converts the duration to working hours using an eight hour day and a
// five day week. Elapsed units ("edays") count full calendar hours.
func (d Duration) Hours() float64 {
	switch d.Unit {
	case "m", "min", "mins", "minute", "minutes", "minuto", "minutos":
		return d.Magnitude / 60
	case "h", "hr", "hrs", "hour", "hours", "hora", "horas":
		return d.Magnitude
	case "eh", "ehr", "ehrs":
		return d.Magnitude
	case "ed", "eday", "edays", "edia", "edias":
		return d.Magnitude * 24
	case "w", "wk", "wks", "week", "weeks", "sem", "semana", "semanas":
		return d.Magnitude * 40
	case "mo", "mon", "mons", "month", "months", "mes", "meses":
		return d.Magnitude * 160
	default:
		return d.Magnitude * 8
	}
}

// Days converts the duration to working days.
func (d Duration) Days() float64 {
	return d.Hours() / 8
}

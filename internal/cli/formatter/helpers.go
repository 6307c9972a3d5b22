package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		inner := StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content
		return boxStyle.Render(inner)
	}
	return boxStyle.Render(content)
}

// RelativeDateFrom returns a human-friendly relative date string from a reference time.
func RelativeDateFrom(t time.Time, now time.Time) string {
	days := int(math.Round(t.Sub(now).Hours() / 24))

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0 && days < 14:
		return fmt.Sprintf("In %dd", days)
	case days > 0 && days < 60:
		return fmt.Sprintf("In %dw", days/7)
	case days > 0:
		return fmt.Sprintf("In %dmo", days/30)
	case days < 0 && days > -14:
		return fmt.Sprintf("%dd ago", -days)
	case days < 0 && days > -60:
		return fmt.Sprintf("%dw ago", -days/7)
	default:
		return fmt.Sprintf("%dmo ago", -days/30)
	}
}

// RelativeDateStyled colors RelativeDateFrom by urgency: overdue or within
// two days is red, within a week yellow.
func RelativeDateStyled(t, now time.Time) string {
	text := RelativeDateFrom(t, now)
	days := int(math.Round(t.Sub(now).Hours() / 24))

	switch {
	case days <= 2:
		return StyleRed.Render(text)
	case days <= 7:
		return StyleYellow.Render(text)
	default:
		return StyleFg.Render(text)
	}
}

// ShortDate renders a schedule date the way the exports show it.
func ShortDate(t *time.Time) string {
	if t == nil {
		return "--"
	}
	return t.Format("02/01/06")
}

// HumanTimestamp returns a relative timestamp for recent times and a date otherwise.
func HumanTimestamp(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < 0:
		return t.Format("Jan 2, 2006 15:04")
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return t.Format("Jan 2, 2006 15:04")
	}
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// FormatHours renders working hours as days and hours of an 8h shift.
func FormatHours(h float64) string {
	if h <= 0 {
		return "0h"
	}
	total := int(math.Round(h))
	d, rem := total/8, total%8
	switch {
	case d > 0 && rem > 0:
		return fmt.Sprintf("%dd %dh", d, rem)
	case d > 0:
		return fmt.Sprintf("%dd", d)
	default:
		return fmt.Sprintf("%dh", rem)
	}
}

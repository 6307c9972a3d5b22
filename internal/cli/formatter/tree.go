package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem represents a single node in a tree display.
type TreeItem struct {
	Title string
	Code  string // WBS code; empty means don't display
	// Path records, for the node and each ancestor below the root, whether it
	// is the last of its siblings. Roots have an empty Path.
	Path      []bool
	Status    string
	Detail    string
	Critical  bool
	Milestone bool
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// RenderTree renders a list of TreeItems as an indented tree using
// box-drawing characters for connectors. Completed items get a green ✔
// prefix, in-progress items an amber ▶ and delayed items a red ▲. Detail
// badges are right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		badge   string
	}

	lines := make([]lineInfo, len(items))
	maxContentWidth := 0

	for idx, item := range items {
		var prefix strings.Builder
		for i, last := range item.Path {
			switch {
			case i < len(item.Path)-1 && last:
				prefix.WriteString(treeBlank)
			case i < len(item.Path)-1:
				prefix.WriteString(treePipe)
			case last:
				prefix.WriteString(treeCorner)
			default:
				prefix.WriteString(treeBranch)
			}
		}

		title := item.Title
		if item.Code != "" {
			title = StyleDim.Render(item.Code) + " " + title
		}

		statusPrefix := ""
		switch strings.ToLower(item.Status) {
		case "completed", "done":
			statusPrefix = StyleGreen.Render("✔") + " "
			title = Dim(title)
		case "in-progress", "in_progress":
			statusPrefix = StyleYellowBold.Render("▶") + " "
			title = StyleYellowBold.Render(title)
		case "delayed":
			statusPrefix = StyleRedBold.Render("▲") + " "
			title = StyleRed.Render(title)
		}

		var marks string
		if item.Milestone {
			marks += " " + StylePurple.Render("◆")
		}
		if item.Critical {
			marks += " " + StyleRed.Render("!")
		}

		content := prefix.String() + statusPrefix + title + marks
		lines[idx].content = content
		if item.Detail != "" {
			lines[idx].badge = StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail))
		}
		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	var b strings.Builder
	for _, li := range lines {
		if li.badge == "" {
			b.WriteString(li.content + "\n")
			continue
		}
		pad := maxContentWidth - lipgloss.Width(li.content)
		if pad < 0 {
			pad = 0
		}
		b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
	}
	return b.String()
}

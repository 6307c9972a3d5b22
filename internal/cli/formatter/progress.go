package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

func clampPct(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func bar(pct, width int) string {
	if width < 2 {
		width = 2
	}
	filled := pct * width / 100
	return strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
}

// RenderProgress renders a progress bar like [████░░░░]  45%.
// Green from 67%, yellow from 33%, red below.
func RenderProgress(pct, width int) string {
	pct = clampPct(pct)
	style := StyleGreen
	if pct < 33 {
		style = StyleRed
	} else if pct < 67 {
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3d%%", style.Render(bar(pct, width)), pct)
}

// RenderCompactBar renders a bare bar without brackets or percentage.
func RenderCompactBar(pct, width int, dim bool) string {
	b := bar(clampPct(pct), width)
	if dim {
		return StyleDim.Render(b)
	}
	return StyleBlue.Render(b)
}

package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderCountdown renders the share of a countdown still left, like
// [████░░░░] 12:30. The bar turns yellow under half and red under a fifth.
func RenderCountdown(left, total int64, width int) string {
	if width < 2 {
		width = 2
	}
	if left < 0 {
		left = 0
	}
	pct := 0.0
	if total > 0 {
		pct = float64(left) / float64(total)
	}
	if pct > 1 {
		pct = 1
	}

	filled := int(pct * float64(width))
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct < 0.2:
		style = StyleRed
	case pct < 0.5:
		style = StyleYellow
	}

	return fmt.Sprintf("[%s] %s", style.Render(bar), FormatClock(left))
}

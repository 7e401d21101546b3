package cli

import (
	"fmt"
	"strings"

	"github.com/miguel731/osintdash/derive"
)

func renderTabs(theme tuiTheme, tabs []string, current int) string {
	segments := make([]string, 0, len(tabs))
	for i, tab := range tabs {
		label := fmt.Sprintf("%d %s", i+1, tab)
		if i == current {
			segments = append(segments, theme.tabOn.Render(label))
		} else {
			segments = append(segments, theme.tabOff.Render(label))
		}
	}
	return strings.Join(segments, " ")
}

func renderActionCard(theme tuiTheme, title, why, action string, width int) string {
	if width < 20 {
		width = 20
	}
	body := strings.Builder{}
	body.WriteString(theme.subtitle.Render(title))
	body.WriteString("\n")
	body.WriteString(theme.muted.Render("Why: "))
	body.WriteString(theme.text.Render(why))
	body.WriteString("\n")
	body.WriteString(theme.info.Render("Next: "))
	body.WriteString(theme.highlight.Render(action))
	return theme.panel.Width(width).Render(body.String())
}

func renderSelectableList(theme tuiTheme, title string, items []string, selected int, width, height int) string {
	if width < 20 {
		width = 20
	}
	if height < 6 {
		height = 6
	}
	maxRows := height - 2
	if maxRows < 1 {
		maxRows = 1
	}

	start := 0
	if selected >= maxRows {
		start = selected - maxRows + 1
	}
	end := start + maxRows
	if end > len(items) {
		end = len(items)
	}

	lines := make([]string, 0, maxRows+1)
	lines = append(lines, theme.subtitle.Render(title))
	for i := start; i < end; i++ {
		prefix := "  "
		line := items[i]
		if i == selected {
			prefix = "> "
			line = theme.highlight.Render(truncateRunes(line, width-4))
		} else {
			line = theme.text.Render(truncateRunes(line, width-4))
		}
		lines = append(lines, prefix+line)
	}
	return theme.panel.Width(width).Render(strings.Join(lines, "\n"))
}

// renderHistogram draws the category chart as horizontal bars scaled to
// the widest bucket.
func renderHistogram(theme tuiTheme, buckets []derive.HistogramBucket, width int) []string {
	if len(buckets) == 0 {
		return []string{theme.muted.Render("No findings match the active filters")}
	}

	maxCount := 0
	labelWidth := 0
	for _, b := range buckets {
		if b.Count > maxCount {
			maxCount = b.Count
		}
		if len(b.Category) > labelWidth {
			labelWidth = len(b.Category)
		}
	}
	if labelWidth > 16 {
		labelWidth = 16
	}

	barSpace := width - labelWidth - 8
	if barSpace < 5 {
		barSpace = 5
	}

	lines := make([]string, 0, len(buckets))
	for _, b := range buckets {
		barLen := b.Count * barSpace / maxCount
		if barLen < 1 {
			barLen = 1
		}
		lines = append(lines, fmt.Sprintf("%-*s %s %d",
			labelWidth,
			truncateRunes(b.Category, labelWidth),
			theme.bar.Render(strings.Repeat("█", barLen)),
			b.Count,
		))
	}
	return lines
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 3 {
		return string(r[:limit])
	}
	return fmt.Sprintf("%s...", string(r[:limit-3]))
}

func panelHeights(total int) (int, int) {
	if total < 10 {
		return total / 2, total - total/2
	}
	top := int(float64(total) * 0.55)
	if top < 5 {
		top = 5
	}
	bottom := total - top
	if bottom < 5 {
		bottom = 5
		top = total - bottom
	}
	return top, bottom
}

// Package ascii renders width-aware boxes and tables for terminal output.
package ascii

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Box builds a box containing the provided lines and returns it as a string.
// Lines are left-aligned with single-space padding on each side. Multi-width
// runes (CJK titles, emoji) are accounted for so the borders stay aligned.
func Box(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	trimmed := make([]string, len(lines))
	maxWidth := 0
	for i, line := range lines {
		trimmed[i] = strings.TrimRight(line, " ")
		maxWidth = max(maxWidth, StringWidth(trimmed[i]))
	}

	innerWidth := maxWidth + 2
	border := strings.Repeat("─", innerWidth)

	var sb strings.Builder
	sb.WriteString("┌" + border + "┐\n")
	for _, line := range trimmed {
		sb.WriteString("│ " + PadRight(line, maxWidth) + " │\n")
	}
	sb.WriteString("└" + border + "┘\n")
	return sb.String()
}

// Align controls the placement of a table cell within its column.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Column describes one table column.
type Column struct {
	Header   string
	Align    Align
	MaxWidth int // 0 means unlimited
}

// Table renders rows under a header line and a rule. Cells wider than the
// column's MaxWidth are truncated with an ellipsis. Missing cells render empty.
func Table(columns []Column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	cell := func(row []string, i int) string {
		if i >= len(row) {
			return ""
		}
		if limit := columns[i].MaxWidth; limit > 0 {
			return TruncateForBox(row[i], limit)
		}
		return row[i]
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = StringWidth(c.Header)
		for _, row := range rows {
			widths[i] = max(widths[i], StringWidth(cell(row, i)))
		}
	}

	var sb strings.Builder
	writeLine := func(values func(i int) string) {
		parts := make([]string, len(columns))
		for i, c := range columns {
			v := values(i)
			if c.Align == AlignRight {
				parts[i] = PadLeft(v, widths[i])
			} else {
				parts[i] = PadRight(v, widths[i])
			}
		}
		sb.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		sb.WriteByte('\n')
	}

	writeLine(func(i int) string { return columns[i].Header })
	writeLine(func(i int) string { return strings.Repeat("─", widths[i]) })
	for _, row := range rows {
		writeLine(func(i int) string { return cell(row, i) })
	}
	return sb.String()
}

// PadRight pads s with spaces to the given display width.
func PadRight(s string, width int) string {
	if fill := width - StringWidth(s); fill > 0 {
		return s + strings.Repeat(" ", fill)
	}
	return s
}

// PadLeft right-aligns s within the given display width.
func PadLeft(s string, width int) string {
	if fill := width - StringWidth(s); fill > 0 {
		return strings.Repeat(" ", fill) + s
	}
	return s
}

// TruncateForBox truncates a string so that its display width fits within the
// provided width. An ellipsis ("...") is appended when truncation occurs and
// there is space for it.
func TruncateForBox(value string, width int) string {
	if width <= 0 {
		return ""
	}
	if StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return substringWithWidth(value, width)
	}
	return substringWithWidth(value, width-3) + "..."
}

func substringWithWidth(s string, target int) string {
	width := 0
	var sb strings.Builder
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if width+w > target {
			break
		}
		width += w
		sb.WriteRune(r)
	}
	return sb.String()
}

// StringWidth returns the display width of a string.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

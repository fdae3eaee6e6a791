package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BgStyle renders text runs that keep one background colour across the
// ANSI resets lipgloss emits between styled segments.
// See: https://github.com/charmbracelet/lipgloss/discussions/78
type BgStyle struct {
	bg    lipgloss.Color
	space string
}

// NewBgStyle creates a background helper for bgColor.
func NewBgStyle(bgColor string) BgStyle {
	bg := lipgloss.Color(bgColor)
	return BgStyle{
		bg:    bg,
		space: lipgloss.NewStyle().Background(bg).Render(" "),
	}
}

// Render styles text so that every character, spaces included, carries the
// background colour.
func (b BgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	wordStyle := style.Background(b.bg)
	if !strings.Contains(text, " ") {
		return wordStyle.Render(text)
	}
	words := strings.Split(text, " ")
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			out = append(out, "")
			continue
		}
		out = append(out, wordStyle.Render(w))
	}
	return strings.Join(out, b.space)
}

// Space returns a single styled space.
func (b BgStyle) Space() string {
	return b.space
}

// Spaces returns n styled spaces.
func (b BgStyle) Spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return lipgloss.NewStyle().Background(b.bg).Render(strings.Repeat(" ", n))
}

// Join joins parts with a styled separator.
func (b BgStyle) Join(parts []string, sep string) string {
	return strings.Join(parts, lipgloss.NewStyle().Background(b.bg).Render(sep))
}

// FillLine pads rendered content to width with the background colour.
func (b BgStyle) FillLine(content string, width int) string {
	return lipgloss.NewStyle().Background(b.bg).Width(width).Render(content)
}

// renderBox draws a rounded border of the given outer size around content
// with title set into the top edge.
func (m Model) renderBox(title, content string, width, height int, focused bool) string {
	if width < 4 || height < 2 {
		return ""
	}
	border := m.theme.Border
	if focused {
		border = m.theme.BorderFocus
	}
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(border))
	innerW := width - 2
	innerH := height - 2

	top := "╭" + strings.Repeat("─", innerW) + "╮"
	if title != "" {
		label := " " + truncate(title, innerW-4) + " "
		fill := innerW - 1 - lipgloss.Width(label)
		if fill >= 0 {
			titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent)).Bold(true)
			top = borderStyle.Render("╭─") + titleStyle.Render(label) +
				borderStyle.Render(strings.Repeat("─", fill)+"╮")
		} else {
			top = borderStyle.Render(top)
		}
	} else {
		top = borderStyle.Render(top)
	}

	lines := strings.Split(content, "\n")
	body := lipgloss.NewStyle().Width(innerW).MaxWidth(innerW)
	var b strings.Builder
	b.WriteString(top)
	for i := 0; i < innerH; i++ {
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		b.WriteString("\n")
		b.WriteString(borderStyle.Render("│"))
		b.WriteString(body.Render(line))
		b.WriteString(borderStyle.Render("│"))
	}
	b.WriteString("\n")
	b.WriteString(borderStyle.Render("╰" + strings.Repeat("─", innerW) + "╯"))
	return b.String()
}

// gauge renders v in [0,1] as a bar of width cells.
func gauge(v float64, width int) string {
	if width <= 0 {
		return ""
	}
	v = min(max(v, 0), 1)
	filled := int(v*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

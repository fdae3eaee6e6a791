package ui

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tuner/internal/config"
	"github.com/five82/tuner/internal/logtail"
)

// logState holds all log-related state.
type logState struct {
	entries     []logtail.Entry
	follow      bool
	lastRefresh time.Time
	err         error
}

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

// logPath returns the configured log file.
func (m Model) logPath() string {
	if m.config != nil && m.config.LogPath != "" {
		return m.config.LogPath
	}
	return config.Default().LogPath
}

// refreshLogs reads the tail of the log file off the UI goroutine.
func (m Model) refreshLogs() tea.Cmd {
	path := m.logPath()
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogTailLines)
		if err != nil {
			return logsMsg{err: err}
		}
		return logsMsg{entries: logtail.ParseLines(lines)}
	}
}

// handleLogs stores a fresh batch and re-renders the viewport.
func (m *Model) handleLogs(msg logsMsg) {
	m.logState.err = msg.err
	if msg.err == nil {
		m.logState.entries = msg.entries
	}
	m.logState.lastRefresh = time.Now()
	m.updateLogViewport()
}

// updateLogViewport sizes the viewport and sets its content.
func (m *Model) updateLogViewport() {
	// Box height = m.height - 2 (header, cmdbar); inner = box - 2 borders.
	w, h := max(m.width-4, 1), max(m.height-4, 1)
	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(w, h)
	}
	m.logViewport.Width = w
	m.logViewport.Height = h
	m.logViewport.SetContent(m.renderLogContent())
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	title := "Logs " + truncate(m.logPath(), max(m.width-16, 8))
	if m.logState.follow {
		title += " (following)"
	}
	return m.renderBox(title, m.logViewport.View(), m.width, m.height-2, true)
}

// renderLogContent formats every entry as one line.
func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	if err := m.logState.err; err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return styles.FaintText.Render("No log file yet at " + m.logPath())
		}
		return styles.DangerText.Render("Read logs: " + err.Error())
	}
	if len(m.logState.entries) == 0 {
		return styles.FaintText.Render("Log is empty")
	}
	lines := make([]string, 0, len(m.logState.entries))
	for _, e := range m.logState.entries {
		lines = append(lines, formatLogEntry(e, styles))
	}
	return strings.Join(lines, "\n")
}

// formatLogEntry renders "15:04:05 INF message key=value error=...".
func formatLogEntry(e logtail.Entry, styles Styles) string {
	if e.Level == "" && e.Time.IsZero() {
		return styles.MutedText.Render(e.Raw)
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(styles.FaintText.Render(e.Time.Local().Format("15:04:05")))
		b.WriteString(" ")
	}
	b.WriteString(styles.LevelStyle(e.Level).Render(levelLabel(e.Level)))
	b.WriteString(" ")
	b.WriteString(styles.Text.Render(e.Message))
	for _, k := range e.FieldKeys() {
		b.WriteString(" ")
		b.WriteString(styles.AccentText.Render(k + "="))
		b.WriteString(styles.MutedText.Render(e.Field(k)))
	}
	if e.Error != "" {
		b.WriteString(" ")
		b.WriteString(styles.DangerText.Render("error=" + e.Error))
	}
	return b.String()
}

// levelLabel abbreviates a zerolog level the way its console writer does.
func levelLabel(level string) string {
	switch strings.ToLower(level) {
	case "trace":
		return "TRC"
	case "debug":
		return "DBG"
	case "info":
		return "INF"
	case "warn":
		return "WRN"
	case "error":
		return "ERR"
	case "fatal":
		return "FTL"
	case "panic":
		return "PNC"
	case "":
		return "???"
	default:
		return fmt.Sprintf("%.3s", strings.ToUpper(level))
	}
}

// handleLogsKey processes keyboard input for the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
			return m, m.refreshLogs()
		}
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewStations
		m.resize()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.logState.follow = false

	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.logState.follow = true

	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		m.logState.follow = false

	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.logState.follow = false
	}
	return m, nil
}

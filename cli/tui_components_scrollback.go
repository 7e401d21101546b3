package cli

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// scrollbackModel renders the log session buffer in a viewport. It follows
// the tail while the user is at the bottom and stops following as soon as
// they scroll up.
type scrollbackModel struct {
	viewport   viewport.Model
	theme      tuiTheme
	lineCount  int
	autoScroll bool
}

func newScrollbackModel(theme tuiTheme) scrollbackModel {
	vp := viewport.New(0, 0)
	vp.YPosition = 0
	return scrollbackModel{
		viewport:   vp,
		theme:      theme,
		autoScroll: true,
	}
}

func (m scrollbackModel) Update(msg tea.Msg) (scrollbackModel, tea.Cmd) {
	var cmd tea.Cmd

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "pgup":
			m.autoScroll = false
		case "home":
			m.viewport.GotoTop()
			m.autoScroll = false
			return m, nil
		case "end":
			m.viewport.GotoBottom()
			m.autoScroll = true
			return m, nil
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	if m.viewport.AtBottom() {
		m.autoScroll = true
	}
	return m, cmd
}

func (m *scrollbackModel) setSize(w, h int) {
	m.viewport.Width = w
	m.viewport.Height = h
}

// setLines replaces the content with the session buffer. The buffer is
// append-only between session switches, so a plain length check is enough
// to know whether anything changed.
func (m *scrollbackModel) setLines(lines []string) {
	if len(lines) == m.lineCount {
		return
	}
	m.lineCount = len(lines)
	m.viewport.SetContent(strings.Join(lines, "\n"))
	if m.autoScroll {
		m.viewport.GotoBottom()
	}
}

func (m *scrollbackModel) reset() {
	m.lineCount = 0
	m.viewport.SetContent("")
	m.autoScroll = true
	m.viewport.GotoTop()
}

func (m scrollbackModel) View() string {
	return m.viewport.View()
}

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/miguel731/osintdash/api"
	"github.com/miguel731/osintdash/derive"
	"github.com/miguel731/osintdash/engine"
)

func (m dashModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading dashboard..."
	}

	header := m.renderHeader()
	tabs := m.theme.panel.Width(m.width - 2).Render(renderTabs(m.theme, dashTabs, int(m.tab)))

	var content string
	switch {
	case m.confirm != nil:
		content = renderActionCard(m.theme, "Confirm", m.confirm.prompt, "y confirm | n cancel", m.width-2)
	case m.form != nil:
		content = m.form.View(m.width - 2)
	default:
		content = m.renderTabContent()
	}

	logs := m.renderLogsPanel()
	footer := m.renderFooter()

	sections := []string{header, tabs, content, logs, footer}
	if m.showHelp {
		sections = append(sections[:4], m.renderHelpCard(), footer)
	}
	return m.theme.canvas.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m dashModel) renderHeader() string {
	title := m.theme.title.Render("osintdash")
	uptime := time.Since(m.started).Round(time.Second)

	refresh := m.theme.ok.Render("auto-refresh on")
	if !m.polling {
		refresh = m.theme.warn.Render("auto-refresh off")
	}

	meta := m.theme.muted.Render(fmt.Sprintf(
		"api=%s  scope=%s  uptime=%s  ",
		m.client.BaseURL(), m.scopeLabel(), uptime,
	)) + refresh

	status := ""
	switch {
	case m.actErr != "":
		status = m.theme.danger.Render("! " + truncateRunes(m.actErr, m.width-8))
	case m.pollErr != "":
		status = m.theme.warn.Render(truncateRunes(m.pollErr+" (retrying)", m.width-8))
	case m.note != "":
		status = m.theme.info.Render(m.note)
	}

	lines := []string{title, meta}
	if status != "" {
		lines = append(lines, status)
	}
	return m.theme.panel.Width(m.width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m dashModel) renderTabContent() string {
	topHeight, _ := panelHeights(m.height - 9)
	switch m.tab {
	case tabFindings:
		return m.renderFindingsPanel(m.width-2, topHeight)
	case tabSchedules:
		return m.renderSchedulesPanel(m.width-2, topHeight)
	default:
		return m.renderScansPanel(m.width-2, topHeight)
	}
}

func (m dashModel) renderScansPanel(width, height int) string {
	scans := m.store.Scans()
	if len(scans) == 0 {
		return renderActionCard(
			m.theme,
			"No scans",
			"No scans in the current scope.",
			"n new scan | f cycle project scope",
			width,
		)
	}

	items := make([]string, 0, len(scans))
	for _, sc := range scans {
		status := statusStyle(m.theme, sc.Status).Render(fmt.Sprintf("%-8s", sc.Status))
		exports := ""
		if sc.Status == api.ScanDone {
			exports = "  " + m.theme.muted.Render("csv/pdf: "+m.client.ExportURL(sc.ID, "csv"))
		}
		items = append(items, fmt.Sprintf("#%-4d %s %-28s p=%d tools=%s%s",
			sc.ID,
			status,
			truncateRunes(sc.Target, 28),
			sc.ProjectID,
			strings.Join(sc.Tools, ","),
			exports,
		))
	}
	return renderSelectableList(m.theme, fmt.Sprintf("Scans · %s", m.scopeLabel()), items, m.selectedScan, width, height)
}

func (m dashModel) renderFindingsPanel(width, height int) string {
	if m.findingsScanID == 0 {
		return renderActionCard(
			m.theme,
			"No findings loaded",
			"Findings are fetched per scan, not polled.",
			"Select a scan and press enter",
			width,
		)
	}

	filtered := derive.Filter(m.findings, m.criteria)
	histogram := derive.Histogram(filtered)
	graph := derive.Relationship(filtered)

	filterLine := fmt.Sprintf("tool=%s  category=%s  severity=%s  search=%q",
		orAll(m.criteria.Tool), orAll(m.criteria.Category), orAll(m.criteria.Severity), m.criteria.Search)
	if m.searching {
		filterLine = m.searchInput.View()
	}

	lines := []string{
		m.theme.subtitle.Render(fmt.Sprintf("Findings · scan #%d · %d/%d shown", m.findingsScanID, len(filtered), len(m.findings))),
		m.theme.muted.Render(filterLine),
		"",
	}

	lines = append(lines, renderHistogram(m.theme, histogram, width/2)...)
	lines = append(lines, "",
		m.theme.muted.Render(fmt.Sprintf("relationship graph: %d nodes, %d edges (star on %q)",
			len(graph.Nodes), len(graph.Edges), derive.GraphRoot)),
		"")

	maxRows := height - len(lines) - 2
	for i, f := range filtered {
		if i >= maxRows {
			lines = append(lines, m.theme.muted.Render(fmt.Sprintf("… %d more", len(filtered)-maxRows)))
			break
		}
		lines = append(lines, fmt.Sprintf("%-14s %-12s %s %s",
			truncateRunes(f.Tool, 14),
			truncateRunes(f.Category, 12),
			severityStyle(m.theme, f.Severity).Render(fmt.Sprintf("%-8s", f.Severity)),
			truncateRunes(f.Value, width-42),
		))
	}

	return m.theme.panel.Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m dashModel) renderSchedulesPanel(width, height int) string {
	schedules := m.store.Schedules()
	if len(schedules) == 0 {
		return renderActionCard(
			m.theme,
			"No schedules",
			"No recurring scans in the current scope.",
			"n new schedule",
			width,
		)
	}

	items := make([]string, 0, len(schedules))
	for _, sch := range schedules {
		// A row under edit renders its draft values, not the canonical
		// refresh that keeps landing underneath it.
		display := sch
		marker := " "
		if m.edit.Open() && m.edit.ID() == sch.ID {
			display = m.edit.Draft()
			marker = "*"
		}
		state := m.theme.ok.Render("on ")
		if !display.Enabled {
			state = m.theme.warn.Render("off")
		}
		items = append(items, fmt.Sprintf("#%-4d %s %s %-28s every %dm  next %s",
			sch.ID,
			marker,
			state,
			truncateRunes(display.Target, 28),
			display.IntervalMinutes,
			sch.NextRunAt.Format("15:04"),
		))
	}
	return renderSelectableList(m.theme, fmt.Sprintf("Schedules · %s", m.scopeLabel()), items, m.selectedSchedule, width, height)
}

func (m dashModel) renderLogsPanel() string {
	_, bottomHeight := panelHeights(m.height - 9)

	label := m.theme.subtitle.Render("Logs")
	switch m.logs.State() {
	case engine.LogConnecting:
		label += m.theme.info.Render(fmt.Sprintf(" · scan #%d · connecting", m.logs.ScanID()))
	case engine.LogStreaming:
		label += m.theme.ok.Render(fmt.Sprintf(" · scan #%d · streaming · %d lines", m.logs.ScanID(), m.logs.Len()))
	case engine.LogFailed:
		label += m.theme.danger.Render(" · failed (press l on a scan to reopen)")
	default:
		if m.logs.Len() > 0 {
			label += m.theme.muted.Render(fmt.Sprintf(" · scan #%d · ended · %d lines", m.logs.ScanID(), m.logs.Len()))
		} else {
			label += m.theme.muted.Render(" · no session (press l on a scan)")
		}
	}

	return m.theme.panel.Width(m.width - 2).Height(bottomHeight).Render(
		lipgloss.JoinVertical(lipgloss.Left, label, m.scrollback.View()))
}

func (m dashModel) renderHelpCard() string {
	keys := []string{
		"1/2/3 tabs | q quit | ? help | a auto-refresh | f scope | pgup/pgdn/home/end scroll logs",
		"scans: enter findings | l logs | L close logs | n new | x stop | r rerun | d delete",
		"findings: t tool | c category | v severity | / search | r reset",
		"schedules: n new | e edit | t toggle | d delete",
	}
	return renderActionCard(m.theme, "Controls", "Dashboard key bindings", strings.Join(keys, "\n"), m.width-2)
}

func (m dashModel) renderFooter() string {
	parts := []string{
		m.theme.help.Render("1/2/3 tabs"),
		m.theme.help.Render("? help"),
		m.theme.help.Render("q quit"),
	}
	if m.edit.Open() {
		parts = append(parts, m.theme.warn.Render(fmt.Sprintf("editing schedule #%d", m.edit.ID())))
	}
	if !m.polling {
		parts = append(parts, m.theme.warn.Render("auto-refresh off"))
	}
	return m.theme.panel.Width(m.width - 2).Render(strings.Join(parts, "  |  "))
}

func orAll(v string) string {
	if v == "" {
		return derive.Wildcard
	}
	return v
}

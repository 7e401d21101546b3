package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/miguel731/osintdash/api"
	"github.com/miguel731/osintdash/config"
	"github.com/miguel731/osintdash/derive"
	"github.com/miguel731/osintdash/engine"
)

const actionTimeout = 15 * time.Second

// Messages

type pollTickMsg struct {
	res   engine.Resource
	epoch uint64
}

type projectsMsg struct {
	gen   uint64
	items []api.Project
	err   error
}

type scansMsg struct {
	gen   uint64
	items []api.Scan
	err   error
}

type schedulesMsg struct {
	gen   uint64
	items []api.Schedule
	err   error
}

type findingsMsg struct {
	scanID int
	items  []api.Finding
	err    error
}

type logOpenedMsg struct {
	token  uuid.UUID
	stream *api.LogStream
	err    error
}

type logLineMsg struct {
	token  uuid.UUID
	stream *api.LogStream
	line   string
}

type logClosedMsg struct {
	token uuid.UUID
	err   error
}

type actionDoneMsg struct {
	outcome engine.Outcome
	err     error
}

type commitDoneMsg struct {
	outcome engine.Outcome
	err     error
}

type configReloadedMsg struct {
	cfg *config.Config
}

type dashTab int

const (
	tabScans dashTab = iota
	tabFindings
	tabSchedules
)

var dashTabs = []string{"Scans", "Findings", "Schedules"}

type confirmState struct {
	prompt string
	run    tea.Cmd
}

type dashModel struct {
	theme tuiTheme

	width  int
	height int

	cancel context.CancelFunc

	client     *api.Client
	cfg        *config.Config
	store      *engine.Store
	poller     *engine.Poller
	logs       *engine.LogSession
	edit       *engine.EditSession
	dispatcher *engine.Dispatcher

	tab              dashTab
	selectedScan     int
	selectedSchedule int
	scopeProject     int

	findings       []api.Finding
	findingsScanID int
	criteria       derive.Criteria
	searchInput    textinput.Model
	searching      bool

	scrollback scrollbackModel

	form    *formModel
	confirm *confirmState

	polling  bool
	pollErr  string
	note     string
	actErr   string
	showHelp bool
	started  time.Time
}

func newDashModel(client *api.Client, cfg *config.Config, cancel context.CancelFunc) dashModel {
	theme := newTUITheme()

	search := textinput.New()
	search.Placeholder = "substring of value"
	search.Prompt = "/ "
	search.CharLimit = 128

	return dashModel{
		theme:       theme,
		cancel:      cancel,
		client:      client,
		cfg:         cfg,
		store:       engine.NewStore(),
		poller:      engine.NewPoller(),
		logs:        engine.NewLogSession(),
		edit:        engine.NewEditSession(),
		dispatcher:  engine.NewDispatcher(client),
		criteria:    derive.Criteria{Tool: derive.Wildcard, Category: derive.Wildcard, Severity: derive.Wildcard},
		searchInput: search,
		scrollback:  newScrollbackModel(theme),
		polling:     true,
		started:     time.Now(),
	}
}

// Commands

func pollTickCmd(res engine.Resource, interval time.Duration, epoch uint64) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return pollTickMsg{res: res, epoch: epoch}
	})
}

func (m dashModel) fetchCmd(req engine.Request) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancelFetch := context.WithTimeout(context.Background(), actionTimeout)
		defer cancelFetch()

		switch req.Resource {
		case engine.ResourceProjects:
			items, err := client.ListProjects(ctx)
			return projectsMsg{gen: req.Gen, items: items, err: err}
		case engine.ResourceScans:
			items, err := client.ListScans(ctx, req.ProjectID)
			return scansMsg{gen: req.Gen, items: items, err: err}
		case engine.ResourceSchedules:
			items, err := client.ListSchedules(ctx, req.ProjectID)
			return schedulesMsg{gen: req.Gen, items: items, err: err}
		}
		return nil
	}
}

func (m dashModel) fetchFindingsCmd(scanID int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancelFetch := context.WithTimeout(context.Background(), actionTimeout)
		defer cancelFetch()
		items, err := client.ListFindings(ctx, scanID)
		return findingsMsg{scanID: scanID, items: items, err: err}
	}
}

func (m dashModel) openLogCmd(scanID int, token uuid.UUID) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		stream, err := client.StreamLogs(context.Background(), scanID)
		return logOpenedMsg{token: token, stream: stream, err: err}
	}
}

func waitLogCmd(stream *api.LogStream, token uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-stream.Lines()
		if !ok {
			return logClosedMsg{token: token, err: stream.Err()}
		}
		return logLineMsg{token: token, stream: stream, line: line}
	}
}

func actionCmd(fn func(context.Context) (engine.Outcome, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancelAction := context.WithTimeout(context.Background(), actionTimeout)
		defer cancelAction()
		outcome, err := fn(ctx)
		return actionDoneMsg{outcome: outcome, err: err}
	}
}

func commitCmd(d *engine.Dispatcher, id int, patch api.SchedulePatch) tea.Cmd {
	return func() tea.Msg {
		ctx, cancelAction := context.WithTimeout(context.Background(), actionTimeout)
		defer cancelAction()
		outcome, err := d.CommitSchedule(ctx, id, patch)
		return commitDoneMsg{outcome: outcome, err: err}
	}
}

func (m dashModel) Init() tea.Cmd {
	reqProjects := m.poller.Start(engine.ResourceProjects, m.cfg.ProjectsInterval())
	reqScans := m.poller.Start(engine.ResourceScans, m.cfg.ScansInterval())
	reqSchedules := m.poller.Start(engine.ResourceSchedules, m.cfg.SchedulesInterval())

	return tea.Batch(
		m.fetchCmd(reqProjects),
		m.fetchCmd(reqScans),
		m.fetchCmd(reqSchedules),
		pollTickCmd(engine.ResourceProjects, m.cfg.ProjectsInterval(), m.poller.Epoch(engine.ResourceProjects)),
		pollTickCmd(engine.ResourceScans, m.cfg.ScansInterval(), m.poller.Epoch(engine.ResourceScans)),
		pollTickCmd(engine.ResourceSchedules, m.cfg.SchedulesInterval(), m.poller.Epoch(engine.ResourceSchedules)),
	)
}

func (m dashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalculateLayout()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case pollTickMsg:
		// A tick from a chain that Start has since replaced must neither
		// fetch nor re-arm; acting on it would leave two chains running.
		if msg.epoch != m.poller.Epoch(msg.res) {
			break
		}
		// The next tick is scheduled unconditionally so a failed or slow
		// fetch never stalls the cycle.
		if req, ok := m.poller.Tick(msg.res); ok {
			cmds = append(cmds, m.fetchCmd(req))
		}
		if m.poller.Running(msg.res) {
			cmds = append(cmds, pollTickCmd(msg.res, m.poller.Interval(msg.res), msg.epoch))
		}

	case projectsMsg:
		if m.poller.Accept(engine.ResourceProjects, msg.gen) == nil {
			if msg.err != nil {
				m.pollErr = "projects poll failed: " + msg.err.Error()
			} else {
				m.pollErr = ""
				m.store.AcceptProjects(msg.items)
			}
		}

	case scansMsg:
		if m.poller.Accept(engine.ResourceScans, msg.gen) == nil {
			if msg.err != nil {
				m.pollErr = "scans poll failed: " + msg.err.Error()
			} else {
				m.pollErr = ""
				m.store.AcceptScans(msg.items)
				m.clampSelections()
			}
		}

	case schedulesMsg:
		if m.poller.Accept(engine.ResourceSchedules, msg.gen) == nil {
			if msg.err != nil {
				m.pollErr = "schedules poll failed: " + msg.err.Error()
			} else {
				m.pollErr = ""
				m.store.AcceptSchedules(msg.items)
				m.clampSelections()
			}
		}

	case findingsMsg:
		if msg.err != nil {
			m.actErr = "findings fetch failed: " + msg.err.Error()
		} else {
			m.findings = msg.items
			m.findingsScanID = msg.scanID
			m.tab = tabFindings
		}

	case logOpenedMsg:
		if msg.err != nil {
			if m.logs.Fail(msg.token, msg.err) {
				m.actErr = "log stream failed: " + msg.err.Error()
			}
			break
		}
		if m.logs.Attach(msg.token, msg.stream.Close) {
			cmds = append(cmds, waitLogCmd(msg.stream, msg.token))
		} else {
			// The session moved on while the dial was in flight.
			_ = msg.stream.Close()
		}

	case logLineMsg:
		if m.logs.Append(msg.token, msg.line) {
			m.scrollback.setLines(m.logs.Lines())
			cmds = append(cmds, waitLogCmd(msg.stream, msg.token))
		}

	case logClosedMsg:
		if msg.err != nil {
			if m.logs.Fail(msg.token, msg.err) {
				m.actErr = "log stream closed: " + msg.err.Error()
			}
		} else if m.logs.Finish(msg.token) {
			m.note = "log stream ended"
		}

	case actionDoneMsg:
		if msg.err != nil {
			m.actErr = msg.err.Error()
			var conflict *engine.ConflictError
			if errors.As(msg.err, &conflict) {
				msg.outcome.Apply(m.store)
				m.clampSelections()
			}
		} else {
			msg.outcome.Apply(m.store)
			m.note = msg.outcome.Note
			m.actErr = ""
			m.clampSelections()
		}

	case commitDoneMsg:
		if msg.err != nil {
			m.actErr = msg.err.Error()
			var conflict *engine.ConflictError
			if errors.As(msg.err, &conflict) {
				// Target vanished: the draft is dead, the row goes away.
				m.edit.Cancel()
				m.form = nil
				msg.outcome.Apply(m.store)
				m.clampSelections()
			}
		} else {
			msg.outcome.Apply(m.store)
			m.edit.Cancel()
			m.form = nil
			m.note = msg.outcome.Note
			m.actErr = ""
		}

	case configReloadedMsg:
		m.cfg = msg.cfg
		m.poller.SetInterval(engine.ResourceProjects, msg.cfg.ProjectsInterval())
		m.poller.SetInterval(engine.ResourceScans, msg.cfg.ScansInterval())
		m.poller.SetInterval(engine.ResourceSchedules, msg.cfg.SchedulesInterval())
		m.note = "config reloaded"
	}

	m.scrollback, cmd = m.scrollback.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m dashModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modal layers swallow all keys: confirm first, then form, then search.
	if m.confirm != nil {
		switch msg.String() {
		case "y", "Y":
			run := m.confirm.run
			m.confirm = nil
			return m, run
		case "n", "N", "esc":
			m.confirm = nil
			m.note = "canceled"
		}
		return m, nil
	}

	if m.form != nil {
		return m.handleFormKey(msg)
	}

	if m.searching {
		switch msg.String() {
		case "enter", "esc":
			m.searching = false
			m.searchInput.Blur()
			m.criteria.Search = strings.TrimSpace(m.searchInput.Value())
			return m, nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		m.criteria.Search = strings.TrimSpace(m.searchInput.Value())
		return m, cmd
	}

	// Paging keys always address the log pane; the list panels use
	// up/down for selection.
	switch msg.String() {
	case "pgup", "pgdown", "home", "end":
		var cmd tea.Cmd
		m.scrollback, cmd = m.scrollback.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.logs.Close()
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp

	case "1":
		m.tab = tabScans
	case "2":
		m.tab = tabFindings
	case "3":
		m.tab = tabSchedules

	case "a":
		return m.toggleAutoRefresh()

	case "f":
		return m.cycleScope()

	case "esc":
		m.actErr = ""
		m.note = ""
	}

	switch m.tab {
	case tabScans:
		return m.handleScansKey(msg)
	case tabFindings:
		return m.handleFindingsKey(msg)
	case tabSchedules:
		return m.handleSchedulesKey(msg)
	}
	return m, nil
}

func (m dashModel) toggleAutoRefresh() (tea.Model, tea.Cmd) {
	if m.polling {
		m.polling = false
		m.poller.Stop(engine.ResourceScans)
		m.poller.Stop(engine.ResourceSchedules)
		m.poller.Stop(engine.ResourceProjects)
		m.note = "auto-refresh off"
		return m, nil
	}
	m.polling = true
	m.note = "auto-refresh on"
	reqProjects := m.poller.Start(engine.ResourceProjects, m.cfg.ProjectsInterval())
	reqScans := m.poller.Start(engine.ResourceScans, m.cfg.ScansInterval())
	reqSchedules := m.poller.Start(engine.ResourceSchedules, m.cfg.SchedulesInterval())
	return m, tea.Batch(
		m.fetchCmd(reqProjects),
		m.fetchCmd(reqScans),
		m.fetchCmd(reqSchedules),
		pollTickCmd(engine.ResourceProjects, m.cfg.ProjectsInterval(), m.poller.Epoch(engine.ResourceProjects)),
		pollTickCmd(engine.ResourceScans, m.cfg.ScansInterval(), m.poller.Epoch(engine.ResourceScans)),
		pollTickCmd(engine.ResourceSchedules, m.cfg.SchedulesInterval(), m.poller.Epoch(engine.ResourceSchedules)),
	)
}

// cycleScope walks the project filter through all -> each project -> all.
// The scope change itself triggers an immediate scoped fetch; whatever was
// in flight for the old scope dies on the generation check.
func (m dashModel) cycleScope() (tea.Model, tea.Cmd) {
	projects := m.store.Projects()
	next := 0
	if len(projects) > 0 {
		if m.scopeProject == 0 {
			next = projects[0].ID
		} else {
			for i, p := range projects {
				if p.ID == m.scopeProject && i+1 < len(projects) {
					next = projects[i+1].ID
					break
				}
			}
		}
	}
	m.scopeProject = next

	reqScans := m.poller.SetScope(engine.ResourceScans, next)
	reqSchedules := m.poller.SetScope(engine.ResourceSchedules, next)
	m.note = "scope: " + m.scopeLabel()
	return m, tea.Batch(m.fetchCmd(reqScans), m.fetchCmd(reqSchedules))
}

func (m dashModel) handleScansKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	scans := m.store.Scans()

	switch msg.String() {
	case "up", "k":
		if m.selectedScan > 0 {
			m.selectedScan--
		}
	case "down", "j":
		if m.selectedScan < len(scans)-1 {
			m.selectedScan++
		}

	case "enter":
		if sc, ok := m.currentScan(); ok {
			return m, m.fetchFindingsCmd(sc.ID)
		}

	case "l":
		if sc, ok := m.currentScan(); ok {
			token := m.logs.Open(sc.ID)
			m.scrollback.reset()
			return m, m.openLogCmd(sc.ID, token)
		}

	case "L":
		m.logs.Close()
		m.scrollback.reset()
		m.note = "log session closed"

	case "n":
		if m.scopeProject == 0 {
			m.actErr = "select a project scope first (f)"
			return m, nil
		}
		form := newScanForm(m.theme)
		m.form = &form

	case "x":
		if sc, ok := m.currentScan(); ok {
			id := sc.ID
			return m, actionCmd(func(ctx context.Context) (engine.Outcome, error) {
				return m.dispatcher.StopScan(ctx, id)
			})
		}

	case "r":
		if sc, ok := m.currentScan(); ok {
			id := sc.ID
			return m, actionCmd(func(ctx context.Context) (engine.Outcome, error) {
				return m.dispatcher.RerunScan(ctx, id)
			})
		}

	case "d":
		if sc, ok := m.currentScan(); ok {
			id := sc.ID
			m.confirm = &confirmState{
				prompt: fmt.Sprintf("Delete scan #%d (%s)?", sc.ID, sc.Target),
				run: actionCmd(func(ctx context.Context) (engine.Outcome, error) {
					return m.dispatcher.DeleteScan(ctx, id)
				}),
			}
		}
	}
	return m, nil
}

func (m dashModel) handleFindingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "t":
		m.criteria.Tool = cycleChoice(derive.Tools(m.findings), m.criteria.Tool)
	case "c":
		m.criteria.Category = cycleChoice(derive.Categories(m.findings), m.criteria.Category)
	case "v":
		m.criteria.Severity = cycleChoice(derive.Severities(m.findings), m.criteria.Severity)
	case "/":
		m.searching = true
		m.searchInput.Focus()
		return m, textinput.Blink
	case "r":
		m.criteria = derive.Criteria{Tool: derive.Wildcard, Category: derive.Wildcard, Severity: derive.Wildcard}
		m.searchInput.SetValue("")
	}
	return m, nil
}

func (m dashModel) handleSchedulesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	schedules := m.store.Schedules()

	switch msg.String() {
	case "up", "k":
		if m.selectedSchedule > 0 {
			m.selectedSchedule--
		}
	case "down", "j":
		if m.selectedSchedule < len(schedules)-1 {
			m.selectedSchedule++
		}

	case "n":
		form := newScheduleCreateForm(m.theme)
		m.form = &form

	case "e":
		if sch, ok := m.currentSchedule(); ok {
			if err := m.edit.Begin(sch); err != nil {
				m.actErr = err.Error()
				return m, nil
			}
			form := newScheduleEditForm(m.theme, m.edit.Draft())
			m.form = &form
		}

	case "t":
		if sch, ok := m.currentSchedule(); ok {
			current := sch
			return m, actionCmd(func(ctx context.Context) (engine.Outcome, error) {
				return m.dispatcher.ToggleSchedule(ctx, current)
			})
		}

	case "d":
		if sch, ok := m.currentSchedule(); ok {
			id := sch.ID
			m.confirm = &confirmState{
				prompt: fmt.Sprintf("Delete schedule #%d (%s)?", sch.ID, sch.Target),
				run: actionCmd(func(ctx context.Context) (engine.Outcome, error) {
					return m.dispatcher.DeleteSchedule(ctx, id)
				}),
			}
		}
	}
	return m, nil
}

func (m dashModel) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	m.form = &form

	if form.canceled {
		if form.kind == formScheduleEdit {
			m.edit.Cancel()
		}
		m.form = nil
		return m, nil
	}

	if !form.submitted {
		return m, cmd
	}

	switch form.kind {
	case formScanCreate:
		req := form.scanRequest(m.scopeProject)
		m.form = nil
		return m, actionCmd(func(ctx context.Context) (engine.Outcome, error) {
			return m.dispatcher.CreateScan(ctx, req)
		})

	case formScheduleCreate:
		req, err := form.scheduleRequest(m.scopeProject)
		if err != nil {
			form.submitted = false
			form.parseErr = err.Error()
			return m, nil
		}
		m.form = nil
		return m, actionCmd(func(ctx context.Context) (engine.Outcome, error) {
			return m.dispatcher.CreateSchedule(ctx, req)
		})

	case formScheduleEdit:
		if err := form.applyToEdit(m.edit); err != nil {
			form.submitted = false
			form.parseErr = err.Error()
			return m, nil
		}
		patch, err := m.edit.Prepare(m.store)
		if err != nil {
			m.actErr = err.Error()
			m.form = nil
			var conflict *engine.ConflictError
			if !errors.As(err, &conflict) {
				// Validation failure: the draft survives for another try.
				reopened := newScheduleEditForm(m.theme, m.edit.Draft())
				m.form = &reopened
				m.form.parseErr = err.Error()
			}
			return m, nil
		}
		if patch.Empty() {
			m.edit.Cancel()
			m.form = nil
			m.note = "no changes"
			return m, nil
		}
		id := m.edit.ID()
		return m, commitCmd(m.dispatcher, id, patch)
	}

	m.form = nil
	return m, cmd
}

func cycleChoice(choices []string, current string) string {
	if len(choices) == 0 {
		return derive.Wildcard
	}
	if current == derive.Wildcard || current == "" {
		return choices[0]
	}
	for i, c := range choices {
		if c == current {
			if i+1 < len(choices) {
				return choices[i+1]
			}
			return derive.Wildcard
		}
	}
	return derive.Wildcard
}

func (m dashModel) currentScan() (api.Scan, bool) {
	scans := m.store.Scans()
	if m.selectedScan < 0 || m.selectedScan >= len(scans) {
		return api.Scan{}, false
	}
	return scans[m.selectedScan], true
}

func (m dashModel) currentSchedule() (api.Schedule, bool) {
	schedules := m.store.Schedules()
	if m.selectedSchedule < 0 || m.selectedSchedule >= len(schedules) {
		return api.Schedule{}, false
	}
	return schedules[m.selectedSchedule], true
}

func (m *dashModel) clampSelections() {
	if n := len(m.store.Scans()); m.selectedScan >= n {
		m.selectedScan = n - 1
	}
	if m.selectedScan < 0 {
		m.selectedScan = 0
	}
	if n := len(m.store.Schedules()); m.selectedSchedule >= n {
		m.selectedSchedule = n - 1
	}
	if m.selectedSchedule < 0 {
		m.selectedSchedule = 0
	}
}

func (m *dashModel) recalculateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bottomHeight := panelHeights(m.height - 9)
	m.scrollback.setSize(m.width-4, bottomHeight-3)
}

func (m dashModel) scopeLabel() string {
	if m.scopeProject == 0 {
		return "all projects"
	}
	if p, ok := m.store.Project(m.scopeProject); ok {
		return p.Name
	}
	return fmt.Sprintf("project #%d", m.scopeProject)
}

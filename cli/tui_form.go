package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/miguel731/osintdash/api"
)

type formKind int

const (
	formScanCreate formKind = iota
	formScheduleCreate
	formScheduleEdit
)

type formField struct {
	label   string
	initial string
	input   textinput.Model
}

// formModel is the shared input form for scan creation and schedule
// create/edit. Tab cycles fields, enter submits, esc cancels. The form
// only collects strings; parsing and validation happen at submit.
type formModel struct {
	theme tuiTheme
	kind  formKind
	title string

	fields []formField
	focus  int

	scheduleID int

	submitted bool
	canceled  bool
	parseErr  string
}

func newFormField(theme tuiTheme, label, value, placeholder string) formField {
	in := textinput.New()
	in.Placeholder = placeholder
	in.SetValue(value)
	in.Prompt = "> "
	in.CharLimit = 256
	return formField{label: label, initial: value, input: in}
}

func newScanForm(theme tuiTheme) formModel {
	f := formModel{
		theme: theme,
		kind:  formScanCreate,
		title: "New Scan",
		fields: []formField{
			newFormField(theme, "Target", "", "domain, IP or email"),
			newFormField(theme, "Tools", strings.Join(api.DefaultTools, ","), "comma-separated"),
		},
	}
	f.fields[0].input.Focus()
	return f
}

func newScheduleCreateForm(theme tuiTheme) formModel {
	f := formModel{
		theme: theme,
		kind:  formScheduleCreate,
		title: "New Schedule",
		fields: []formField{
			newFormField(theme, "Target", "", "domain, IP or email"),
			newFormField(theme, "Tools", strings.Join(api.DefaultTools, ","), "comma-separated"),
			newFormField(theme, "Interval (min)", "60", "minutes between runs"),
		},
	}
	f.fields[0].input.Focus()
	return f
}

func newScheduleEditForm(theme tuiTheme, draft api.Schedule) formModel {
	f := formModel{
		theme:      theme,
		kind:       formScheduleEdit,
		title:      fmt.Sprintf("Edit Schedule #%d", draft.ID),
		scheduleID: draft.ID,
		fields: []formField{
			newFormField(theme, "Target", draft.Target, "domain, IP or email"),
			newFormField(theme, "Tools", strings.Join(draft.Tools, ","), "comma-separated"),
			newFormField(theme, "Interval (min)", strconv.Itoa(draft.IntervalMinutes), "minutes between runs"),
		},
	}
	f.fields[0].input.Focus()
	return f
}

func (f formModel) Update(msg tea.Msg) (formModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			f.canceled = true
			return f, nil
		case "enter":
			f.submitted = true
			return f, nil
		case "tab", "down":
			f.moveFocus(1)
			return f, textinput.Blink
		case "shift+tab", "up":
			f.moveFocus(-1)
			return f, textinput.Blink
		}
	}

	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return f, cmd
}

func (f *formModel) moveFocus(delta int) {
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	f.fields[f.focus].input.Focus()
}

func (f formModel) View(width int) string {
	lines := []string{f.theme.subtitle.Render(f.title), ""}
	for i, field := range f.fields {
		label := f.theme.muted.Render(field.label)
		if i == f.focus {
			label = f.theme.info.Render(field.label)
		}
		lines = append(lines, label, field.input.View())
	}
	if f.parseErr != "" {
		lines = append(lines, "", f.theme.danger.Render(f.parseErr))
	}
	lines = append(lines, "", f.theme.help.Render("enter save | tab next field | esc cancel"))
	return f.theme.panel.Width(width).Render(strings.Join(lines, "\n"))
}

func (f formModel) value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

func splitTools(v string) []string {
	parts := strings.Split(v, ",")
	tools := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tools = append(tools, t)
		}
	}
	return tools
}

func (f formModel) scanRequest(projectID int) api.ScanRequest {
	return api.ScanRequest{
		ProjectID: projectID,
		Target:    f.value(0),
		Tools:     splitTools(f.value(1)),
	}
}

func (f formModel) scheduleRequest(projectID int) (api.ScheduleRequest, error) {
	interval, err := strconv.Atoi(f.value(2))
	if err != nil {
		return api.ScheduleRequest{}, fmt.Errorf("interval must be a number")
	}
	req := api.ScheduleRequest{
		Target:          f.value(0),
		Tools:           splitTools(f.value(1)),
		IntervalMinutes: interval,
	}
	if projectID > 0 {
		req.ProjectID = &projectID
	}
	return req, nil
}

// applyToEdit pushes the fields the user actually changed into the edit
// session, which is what keeps the eventual patch minimal.
func (f formModel) applyToEdit(edit interface {
	SetTarget(string)
	SetTools([]string)
	SetInterval(int)
}) error {
	if f.value(0) != strings.TrimSpace(f.fields[0].initial) {
		edit.SetTarget(f.value(0))
	}
	if f.value(1) != strings.TrimSpace(f.fields[1].initial) {
		edit.SetTools(splitTools(f.value(1)))
	}
	if f.value(2) != strings.TrimSpace(f.fields[2].initial) {
		interval, err := strconv.Atoi(f.value(2))
		if err != nil {
			return fmt.Errorf("interval must be a number")
		}
		edit.SetInterval(interval)
	}
	return nil
}

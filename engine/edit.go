package engine

import (
	"github.com/miguel731/osintdash/api"
)

// Edit field names tracked by the session.
const (
	fieldTarget   = "target"
	fieldTools    = "tools"
	fieldInterval = "interval_minutes"
	fieldEnabled  = "enabled"
)

// EditSession is the one schedule edit buffer the view may have open. It
// snapshots the editable fields at Begin, records which ones the user
// touched, and at commit time emits a patch of only those fields that
// differ from the canonical copy as it stands then, not as it stood at
// Begin, so fields changed server-side in the meantime are not clobbered.
type EditSession struct {
	open    bool
	id      int
	draft   api.Schedule
	touched map[string]bool
}

func NewEditSession() *EditSession {
	return &EditSession{}
}

// Begin opens a draft over the given schedule. Only one draft may be open
// across the whole view; callers must Cancel or commit first.
func (e *EditSession) Begin(s api.Schedule) error {
	if e.open {
		return ErrEditOpen
	}
	e.open = true
	e.id = s.ID
	e.draft = s
	e.draft.Tools = append([]string(nil), s.Tools...)
	e.touched = make(map[string]bool)
	return nil
}

func (e *EditSession) Open() bool { return e.open }
func (e *EditSession) ID() int    { return e.id }

// Draft returns the current draft values for rendering. Meaningless when
// no session is open.
func (e *EditSession) Draft() api.Schedule { return e.draft }

func (e *EditSession) SetTarget(v string) {
	if !e.open {
		return
	}
	e.draft.Target = v
	e.touched[fieldTarget] = true
}

func (e *EditSession) SetTools(v []string) {
	if !e.open {
		return
	}
	e.draft.Tools = append([]string(nil), v...)
	e.touched[fieldTools] = true
}

func (e *EditSession) SetInterval(minutes int) {
	if !e.open {
		return
	}
	e.draft.IntervalMinutes = minutes
	e.touched[fieldInterval] = true
}

func (e *EditSession) SetEnabled(v bool) {
	if !e.open {
		return
	}
	e.draft.Enabled = v
	e.touched[fieldEnabled] = true
}

// Patch builds the minimal update against the current canonical copy:
// touched fields whose draft value still differs from canonical. A field
// the user touched but that now matches canonical is a no-op and is left
// out.
func (e *EditSession) Patch(canonical api.Schedule) api.SchedulePatch {
	var p api.SchedulePatch
	if !e.open {
		return p
	}
	if e.touched[fieldTarget] && e.draft.Target != canonical.Target {
		v := e.draft.Target
		p.Target = &v
	}
	if e.touched[fieldTools] && !equalTools(e.draft.Tools, canonical.Tools) {
		v := append([]string(nil), e.draft.Tools...)
		p.Tools = &v
	}
	if e.touched[fieldInterval] && e.draft.IntervalMinutes != canonical.IntervalMinutes {
		v := e.draft.IntervalMinutes
		p.IntervalMinutes = &v
	}
	if e.touched[fieldEnabled] && e.draft.Enabled != canonical.Enabled {
		v := e.draft.Enabled
		p.Enabled = &v
	}
	return p
}

// Validate checks the draft's local preconditions before any dispatch.
func (e *EditSession) Validate() error {
	if !e.open {
		return &ValidationError{Field: "session", Reason: "no edit in progress"}
	}
	if e.draft.Target == "" {
		return &ValidationError{Field: "target", Reason: "must not be empty"}
	}
	if e.draft.IntervalMinutes <= 0 {
		return &ValidationError{Field: "interval_minutes", Reason: "must be positive"}
	}
	return nil
}

// Prepare is the loop-side half of a commit: it validates the draft and
// rebases the patch on the canonical copy as the store holds it now. If
// the canonical entity vanished while the draft was open, the draft is
// discarded and ConflictError returned: the view must reflect the
// deletion, not a phantom edit. An empty patch means the commit is a
// no-op; the caller closes the session without a network call.
func (e *EditSession) Prepare(store *Store) (api.SchedulePatch, error) {
	if err := e.Validate(); err != nil {
		return api.SchedulePatch{}, err
	}
	canonical, ok := store.Schedule(e.id)
	if !ok {
		e.Cancel()
		return api.SchedulePatch{}, &ConflictError{Reason: "schedule was deleted while editing"}
	}
	return e.Patch(canonical), nil
}

// Cancel discards the draft without network effect.
func (e *EditSession) Cancel() {
	e.open = false
	e.id = 0
	e.draft = api.Schedule{}
	e.touched = nil
}

func equalTools(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

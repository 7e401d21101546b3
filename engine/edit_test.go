package engine

import (
	"errors"
	"testing"

	"github.com/miguel731/osintdash/api"
)

func schedule() api.Schedule {
	return api.Schedule{
		ID:              5,
		Target:          "example.com",
		Tools:           []string{"amass", "subfinder"},
		IntervalMinutes: 60,
		Enabled:         true,
	}
}

func TestEditSessionSingleEditor(t *testing.T) {
	e := NewEditSession()
	if err := e.Begin(schedule()); err != nil {
		t.Fatalf("first Begin failed: %v", err)
	}
	if err := e.Begin(schedule()); !errors.Is(err, ErrEditOpen) {
		t.Fatalf("second Begin: err = %v, want ErrEditOpen", err)
	}

	e.Cancel()
	if err := e.Begin(schedule()); err != nil {
		t.Fatalf("Begin after Cancel failed: %v", err)
	}
}

func TestEditPatchContainsOnlyTouchedInterval(t *testing.T) {
	e := NewEditSession()
	if err := e.Begin(schedule()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	e.SetInterval(120)

	p := e.Patch(schedule())
	if p.IntervalMinutes == nil || *p.IntervalMinutes != 120 {
		t.Fatalf("interval missing from patch: %+v", p)
	}
	if p.Target != nil || p.Tools != nil || p.Enabled != nil {
		t.Fatalf("patch touched untouched fields: %+v", p)
	}
}

func TestEditPatchRebasesOnCurrentCanonical(t *testing.T) {
	e := NewEditSession()
	if err := e.Begin(schedule()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	e.SetInterval(120)

	// The server changed the interval to the same value while the draft
	// was open: the patch has nothing left to say.
	current := schedule()
	current.IntervalMinutes = 120
	if p := e.Patch(current); !p.Empty() {
		t.Fatalf("patch not empty after canonical caught up: %+v", p)
	}

	// Untouched fields always read from canonical: a server-side target
	// change must not appear in the patch.
	current = schedule()
	current.Target = "renamed.example.com"
	p := e.Patch(current)
	if p.Target != nil {
		t.Fatalf("untouched target clobbered: %+v", p)
	}
	if p.IntervalMinutes == nil {
		t.Fatalf("touched interval lost: %+v", p)
	}
}

func TestEditPrepareConflictsWhenCanonicalVanished(t *testing.T) {
	store := NewStore()
	store.AcceptSchedules([]api.Schedule{schedule()})

	e := NewEditSession()
	if err := e.Begin(schedule()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	e.SetInterval(90)

	// Poll tick shows the schedule gone before the user saves.
	store.AcceptSchedules(nil)

	_, err := e.Prepare(store)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if e.Open() {
		t.Fatal("draft still open after conflict")
	}
}

func TestEditValidateBlocksBadDraft(t *testing.T) {
	e := NewEditSession()
	if err := e.Begin(schedule()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	e.SetInterval(0)

	var invalid *ValidationError
	if err := e.Validate(); !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestEditDraftIsolatedFromCanonical(t *testing.T) {
	e := NewEditSession()
	original := schedule()
	if err := e.Begin(original); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	e.SetTools([]string{"hibp"})

	if len(original.Tools) != 2 {
		t.Fatalf("draft mutation leaked into canonical: %v", original.Tools)
	}
	if got := e.Draft().Tools; len(got) != 1 || got[0] != "hibp" {
		t.Fatalf("draft tools = %v, want [hibp]", got)
	}
}

package engine

import (
	"context"
	"strings"

	"github.com/miguel731/osintdash/api"
)

// Outcome is the confirmed result of a dispatched action. The network
// round trip happens wherever the caller ran it; Apply performs the local
// collection patch and must be called from the goroutine that owns the
// Store. In the dashboard that is the event loop, so the patch is visible
// to the next poll tick's reconciliation without locking.
type Outcome struct {
	Note  string
	apply func(*Store)
}

// Apply patches the store with the action's confirmed result.
func (o Outcome) Apply(s *Store) {
	if o.apply != nil {
		o.apply(s)
	}
}

// Dispatcher runs the fire-and-confirm one-shot actions. Each action is a
// single round trip; validation failures abort before any network call,
// and a failed round trip produces no Outcome, so nothing local mutates.
// Confirmation of destructive actions is the caller's job and happens
// before dispatch.
type Dispatcher struct {
	client *api.Client
}

func NewDispatcher(client *api.Client) *Dispatcher {
	return &Dispatcher{client: client}
}

func (d *Dispatcher) CreateProject(ctx context.Context, name string) (Outcome, error) {
	if strings.TrimSpace(name) == "" {
		return Outcome{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	p, err := d.client.CreateProject(ctx, name)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Note:  "project " + p.Name + " created",
		apply: func(s *Store) { s.UpsertProject(p) },
	}, nil
}

func (d *Dispatcher) DeleteProject(ctx context.Context, id int) (Outcome, error) {
	if err := d.client.DeleteProject(ctx, id); err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Note:  "project deleted",
		apply: func(s *Store) { s.RemoveProject(id) },
	}, nil
}

func (d *Dispatcher) CreateScan(ctx context.Context, req api.ScanRequest) (Outcome, error) {
	if req.ProjectID <= 0 {
		return Outcome{}, &ValidationError{Field: "project_id", Reason: "select a project"}
	}
	if strings.TrimSpace(req.Target) == "" {
		return Outcome{}, &ValidationError{Field: "target", Reason: "must not be empty"}
	}
	if len(req.Tools) == 0 {
		return Outcome{}, &ValidationError{Field: "tools", Reason: "pick at least one tool"}
	}
	sc, err := d.client.CreateScan(ctx, req)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Note:  "scan of " + sc.Target + " started",
		apply: func(s *Store) { s.UpsertScan(sc) },
	}, nil
}

func (d *Dispatcher) StopScan(ctx context.Context, id int) (Outcome, error) {
	sc, err := d.client.StopScan(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Note:  "stop requested",
		apply: func(s *Store) { s.UpsertScan(sc) },
	}, nil
}

// RerunScan asks the service for a fresh scan with the same target, tools
// and project. The new scan lands at the head of the local collection.
func (d *Dispatcher) RerunScan(ctx context.Context, id int) (Outcome, error) {
	sc, err := d.client.RerunScan(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Note:  "rerun of " + sc.Target + " queued",
		apply: func(s *Store) { s.UpsertScan(sc) },
	}, nil
}

func (d *Dispatcher) DeleteScan(ctx context.Context, id int) (Outcome, error) {
	if err := d.client.DeleteScan(ctx, id); err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Note:  "scan deleted",
		apply: func(s *Store) { s.RemoveScan(id) },
	}, nil
}

func (d *Dispatcher) CreateSchedule(ctx context.Context, req api.ScheduleRequest) (Outcome, error) {
	if strings.TrimSpace(req.Target) == "" {
		return Outcome{}, &ValidationError{Field: "target", Reason: "must not be empty"}
	}
	if req.IntervalMinutes <= 0 {
		return Outcome{}, &ValidationError{Field: "interval_minutes", Reason: "must be positive"}
	}
	sch, err := d.client.CreateSchedule(ctx, req)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Note:  "schedule for " + sch.Target + " created",
		apply: func(s *Store) { s.UpsertSchedule(sch) },
	}, nil
}

// ToggleSchedule flips the enabled flag of the given canonical copy via a
// single-field patch.
func (d *Dispatcher) ToggleSchedule(ctx context.Context, current api.Schedule) (Outcome, error) {
	enabled := !current.Enabled
	sch, err := d.client.UpdateSchedule(ctx, current.ID, api.SchedulePatch{Enabled: &enabled})
	if err != nil {
		if api.IsNotFound(err) {
			id := current.ID
			out := Outcome{
				Note:  "schedule vanished",
				apply: func(s *Store) { s.RemoveSchedule(id) },
			}
			return out, &ConflictError{Reason: "schedule was deleted"}
		}
		return Outcome{}, err
	}
	note := "schedule disabled"
	if sch.Enabled {
		note = "schedule enabled"
	}
	return Outcome{
		Note:  note,
		apply: func(s *Store) { s.UpsertSchedule(sch) },
	}, nil
}

func (d *Dispatcher) DeleteSchedule(ctx context.Context, id int) (Outcome, error) {
	if err := d.client.DeleteSchedule(ctx, id); err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Note:  "schedule deleted",
		apply: func(s *Store) { s.RemoveSchedule(id) },
	}, nil
}

// CommitSchedule sends a prepared edit patch. A 404 means the schedule
// vanished while the draft was open: the caller gets ConflictError and an
// Outcome that removes the phantom entry.
func (d *Dispatcher) CommitSchedule(ctx context.Context, id int, patch api.SchedulePatch) (Outcome, error) {
	sch, err := d.client.UpdateSchedule(ctx, id, patch)
	if err != nil {
		if api.IsNotFound(err) {
			out := Outcome{
				Note:  "schedule vanished",
				apply: func(s *Store) { s.RemoveSchedule(id) },
			}
			return out, &ConflictError{Reason: "schedule was deleted while editing"}
		}
		return Outcome{}, err
	}
	return Outcome{
		Note:  "schedule saved",
		apply: func(s *Store) { s.UpsertSchedule(sch) },
	}, nil
}

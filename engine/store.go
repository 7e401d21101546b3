package engine

import "github.com/miguel731/osintdash/api"

// Store is the single owner of the polled collections. It has exactly two
// kinds of mutation entry points: Accept* (snapshot replace from a poll
// response) and the local-patch methods used by the Dispatcher after a
// confirmed round trip. Both run on the owning event loop, so the store
// carries no lock; readers get copies and can hold them across frames.
type Store struct {
	projects  []api.Project
	scans     []api.Scan
	schedules []api.Schedule
}

func NewStore() *Store {
	return &Store{}
}

// AcceptProjects replaces the project collection with a polled snapshot.
func (s *Store) AcceptProjects(items []api.Project) {
	s.projects = append([]api.Project(nil), items...)
}

// AcceptScans replaces the scan collection with a polled snapshot.
func (s *Store) AcceptScans(items []api.Scan) {
	s.scans = append([]api.Scan(nil), items...)
}

// AcceptSchedules replaces the schedule collection with a polled snapshot.
// A schedule under edit is replaced like any other: the canonical copy is
// the base for subsequent saves, and the edit session keeps its own draft
// of the touched fields.
func (s *Store) AcceptSchedules(items []api.Schedule) {
	s.schedules = append([]api.Schedule(nil), items...)
}

func (s *Store) Projects() []api.Project {
	return append([]api.Project(nil), s.projects...)
}

func (s *Store) Scans() []api.Scan {
	return append([]api.Scan(nil), s.scans...)
}

func (s *Store) Schedules() []api.Schedule {
	return append([]api.Schedule(nil), s.schedules...)
}

func (s *Store) Scan(id int) (api.Scan, bool) {
	for _, sc := range s.scans {
		if sc.ID == id {
			return sc, true
		}
	}
	return api.Scan{}, false
}

func (s *Store) Schedule(id int) (api.Schedule, bool) {
	for _, sch := range s.schedules {
		if sch.ID == id {
			return sch, true
		}
	}
	return api.Schedule{}, false
}

func (s *Store) Project(id int) (api.Project, bool) {
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return api.Project{}, false
}

// UpsertProject applies a confirmed create/update locally. New entries go
// to the head of the list, matching the order the service returns.
func (s *Store) UpsertProject(p api.Project) {
	for i := range s.projects {
		if s.projects[i].ID == p.ID {
			s.projects[i] = p
			return
		}
	}
	s.projects = append([]api.Project{p}, s.projects...)
}

// RemoveProject drops a project and, locally, every scan that belonged to
// it. The next poll tick reconciles with the server's cascade.
func (s *Store) RemoveProject(id int) {
	s.projects = deleteByID(s.projects, func(p api.Project) int { return p.ID }, id)

	kept := s.scans[:0]
	for _, sc := range s.scans {
		if sc.ProjectID != id {
			kept = append(kept, sc)
		}
	}
	s.scans = kept
}

func (s *Store) UpsertScan(sc api.Scan) {
	for i := range s.scans {
		if s.scans[i].ID == sc.ID {
			s.scans[i] = sc
			return
		}
	}
	s.scans = append([]api.Scan{sc}, s.scans...)
}

func (s *Store) RemoveScan(id int) {
	s.scans = deleteByID(s.scans, func(sc api.Scan) int { return sc.ID }, id)
}

func (s *Store) UpsertSchedule(sch api.Schedule) {
	for i := range s.schedules {
		if s.schedules[i].ID == sch.ID {
			s.schedules[i] = sch
			return
		}
	}
	s.schedules = append([]api.Schedule{sch}, s.schedules...)
}

func (s *Store) RemoveSchedule(id int) {
	s.schedules = deleteByID(s.schedules, func(sch api.Schedule) int { return sch.ID }, id)
}

func deleteByID[T any](items []T, id func(T) int, target int) []T {
	kept := items[:0]
	for _, item := range items {
		if id(item) != target {
			kept = append(kept, item)
		}
	}
	return kept
}

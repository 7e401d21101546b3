package engine

import (
	"testing"

	"github.com/miguel731/osintdash/api"
)

func TestStoreAcceptReplacesSnapshot(t *testing.T) {
	s := NewStore()
	s.AcceptScans([]api.Scan{{ID: 1, Target: "a.com"}, {ID: 2, Target: "b.com"}})
	s.AcceptScans([]api.Scan{{ID: 3, Target: "c.com"}})

	scans := s.Scans()
	if len(scans) != 1 || scans[0].ID != 3 {
		t.Fatalf("snapshot replace failed: %+v", scans)
	}
}

func TestStoreSnapshotsAreCopies(t *testing.T) {
	s := NewStore()
	s.AcceptScans([]api.Scan{{ID: 1, Status: api.ScanRunning}})

	snapshot := s.Scans()
	snapshot[0].Status = api.ScanFailed

	if sc, _ := s.Scan(1); sc.Status != api.ScanRunning {
		t.Fatalf("mutating a snapshot leaked into the store: %+v", sc)
	}
}

func TestStoreUpsertPrependsNewEntries(t *testing.T) {
	s := NewStore()
	s.AcceptScans([]api.Scan{{ID: 1}})
	s.UpsertScan(api.Scan{ID: 2, Target: "new.com"})

	scans := s.Scans()
	if len(scans) != 2 || scans[0].ID != 2 {
		t.Fatalf("new scan not at head: %+v", scans)
	}

	s.UpsertScan(api.Scan{ID: 1, Status: api.ScanDone})
	if sc, _ := s.Scan(1); sc.Status != api.ScanDone {
		t.Fatalf("in-place update failed: %+v", sc)
	}
	if len(s.Scans()) != 2 {
		t.Fatalf("upsert duplicated an entry: %+v", s.Scans())
	}
}

func TestStoreRemoveProjectCascadesScans(t *testing.T) {
	s := NewStore()
	s.AcceptProjects([]api.Project{{ID: 1, Name: "acme"}, {ID: 2, Name: "other"}})
	s.AcceptScans([]api.Scan{
		{ID: 10, ProjectID: 1},
		{ID: 11, ProjectID: 2},
		{ID: 12, ProjectID: 1},
	})

	s.RemoveProject(1)

	if _, ok := s.Project(1); ok {
		t.Fatal("project still present after removal")
	}
	scans := s.Scans()
	if len(scans) != 1 || scans[0].ID != 11 {
		t.Fatalf("scan cascade failed: %+v", scans)
	}
}

func TestStoreLocalPatchVisibleToNextAccept(t *testing.T) {
	s := NewStore()
	s.AcceptSchedules([]api.Schedule{{ID: 1, Target: "a.com", IntervalMinutes: 30}})

	// Dispatcher patch lands between two poll ticks.
	s.UpsertSchedule(api.Schedule{ID: 1, Target: "a.com", IntervalMinutes: 60})
	if sch, _ := s.Schedule(1); sch.IntervalMinutes != 60 {
		t.Fatalf("local patch not visible: %+v", sch)
	}

	// The next accepted snapshot is authoritative and reconciles.
	s.AcceptSchedules([]api.Schedule{{ID: 1, Target: "a.com", IntervalMinutes: 60}})
	if sch, _ := s.Schedule(1); sch.IntervalMinutes != 60 {
		t.Fatalf("reconciliation diverged: %+v", sch)
	}
}

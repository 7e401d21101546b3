package engine

import (
	"errors"
	"testing"
	"time"
)

func TestPollerAcceptsOnlyCurrentGeneration(t *testing.T) {
	p := NewPoller()

	first := p.Start(ResourceScans, time.Second)
	second, ok := p.Tick(ResourceScans)
	if !ok {
		t.Fatal("expected tick to produce a request while running")
	}
	if second.Gen <= first.Gen {
		t.Fatalf("generation did not advance: first=%d second=%d", first.Gen, second.Gen)
	}

	// Whatever order the responses arrive in, only the newest generation
	// may be applied.
	if err := p.Accept(ResourceScans, second.Gen); err != nil {
		t.Fatalf("current generation rejected: %v", err)
	}
	if err := p.Accept(ResourceScans, first.Gen); !errors.Is(err, ErrStaleResponse) {
		t.Fatalf("stale generation accepted: err=%v", err)
	}
}

func TestPollerScopeChangeDiscardsInFlightRequest(t *testing.T) {
	p := NewPoller()
	p.Start(ResourceScans, time.Second)

	inFlight, _ := p.Tick(ResourceScans)

	// Scope flips from project A to project B while A's request is on the
	// wire. A's late response must not survive the generation check.
	scoped := p.SetScope(ResourceScans, 2)
	if scoped.ProjectID != 2 {
		t.Fatalf("scoped request carries project %d, want 2", scoped.ProjectID)
	}

	if err := p.Accept(ResourceScans, inFlight.Gen); !errors.Is(err, ErrStaleResponse) {
		t.Fatalf("late response for the old scope was accepted: err=%v", err)
	}
	if err := p.Accept(ResourceScans, scoped.Gen); err != nil {
		t.Fatalf("scoped response rejected: %v", err)
	}
}

func TestPollerStopObsoletesInFlightAndHaltsTicks(t *testing.T) {
	p := NewPoller()
	req := p.Start(ResourceSchedules, time.Second)

	p.Stop(ResourceSchedules)

	if err := p.Accept(ResourceSchedules, req.Gen); !errors.Is(err, ErrStaleResponse) {
		t.Fatalf("in-flight response applied after stop: err=%v", err)
	}
	if _, ok := p.Tick(ResourceSchedules); ok {
		t.Fatal("tick produced a request after stop")
	}
}

func TestPollerScopeSurvivesTicks(t *testing.T) {
	p := NewPoller()
	p.Start(ResourceScans, time.Second)
	p.SetScope(ResourceScans, 7)

	req, ok := p.Tick(ResourceScans)
	if !ok {
		t.Fatal("expected a request")
	}
	if req.ProjectID != 7 {
		t.Fatalf("tick request carries project %d, want 7", req.ProjectID)
	}

	cleared := p.SetScope(ResourceScans, 0)
	if cleared.ProjectID != 0 {
		t.Fatalf("cleared scope request carries project %d, want 0", cleared.ProjectID)
	}
}

func TestPollerStartOpensNewEpoch(t *testing.T) {
	p := NewPoller()
	p.Start(ResourceScans, time.Second)
	before := p.Epoch(ResourceScans)

	p.Tick(ResourceScans)
	p.SetScope(ResourceScans, 3)
	if p.Epoch(ResourceScans) != before {
		t.Fatalf("tick/scope changed the epoch: %d -> %d", before, p.Epoch(ResourceScans))
	}

	p.Stop(ResourceScans)
	p.Start(ResourceScans, time.Second)
	if p.Epoch(ResourceScans) <= before {
		t.Fatalf("restart did not open a new epoch: %d -> %d", before, p.Epoch(ResourceScans))
	}
}

func TestPollerResourcesAreIndependent(t *testing.T) {
	p := NewPoller()
	scans := p.Start(ResourceScans, time.Second)
	p.Start(ResourceSchedules, time.Second)

	p.Tick(ResourceSchedules)

	if err := p.Accept(ResourceScans, scans.Gen); err != nil {
		t.Fatalf("scans generation invalidated by schedules tick: %v", err)
	}
}

package engine

import "time"

// Resource names one polled collection.
type Resource string

const (
	ResourceProjects  Resource = "projects"
	ResourceScans     Resource = "scans"
	ResourceSchedules Resource = "schedules"
)

// Request describes one fetch the caller should issue. Gen must travel
// with the response so Accept can tell a live result from a superseded one.
type Request struct {
	Resource  Resource
	Gen       uint64
	ProjectID int
}

type resourceState struct {
	gen       uint64
	epoch     uint64
	projectID int
	interval  time.Duration
	running   bool
}

// Poller owns the repeating refresh cycle for each collection. It never
// performs I/O itself: the caller issues the fetch described by each
// Request and reports the outcome back through Accept. Every new Request
// bumps the resource's generation, which is what cancels any still-pending
// request for the same resource; a response stamped with an older
// generation is refused.
type Poller struct {
	res map[Resource]*resourceState
}

func NewPoller() *Poller {
	return &Poller{res: make(map[Resource]*resourceState)}
}

func (p *Poller) state(r Resource) *resourceState {
	st, ok := p.res[r]
	if !ok {
		st = &resourceState{}
		p.res[r] = st
	}
	return st
}

// Start begins the repeating cycle for a resource and returns the first
// request to issue immediately. It also opens a new epoch: tick timers
// armed for an earlier run of the cycle carry the old epoch and must be
// ignored, otherwise a stop/start pair leaves two timer chains running.
func (p *Poller) Start(r Resource, interval time.Duration) Request {
	st := p.state(r)
	st.running = true
	st.interval = interval
	st.gen++
	st.epoch++
	return Request{Resource: r, Gen: st.gen, ProjectID: st.projectID}
}

// Stop halts the cycle. The generation bump obsoletes any in-flight
// request; its response, if it ever arrives, fails the Accept check.
func (p *Poller) Stop(r Resource) {
	st := p.state(r)
	st.running = false
	st.gen++
}

// Tick produces the next request of the cycle, superseding whatever is
// still in flight. Returns false when the resource is not running (a tick
// from a stale timer after Stop).
func (p *Poller) Tick(r Resource) (Request, bool) {
	st := p.state(r)
	if !st.running {
		return Request{}, false
	}
	st.gen++
	return Request{Resource: r, Gen: st.gen, ProjectID: st.projectID}, true
}

// SetScope changes the query scope and triggers one immediate fetch with
// it. A zero projectID clears the scope: the degenerate unscoped fetch.
func (p *Poller) SetScope(r Resource, projectID int) Request {
	st := p.state(r)
	st.projectID = projectID
	st.gen++
	return Request{Resource: r, Gen: st.gen, ProjectID: projectID}
}

// Accept validates a response's generation. A nil return means the caller
// should apply the payload to the store; ErrStaleResponse means the
// request was superseded and the payload must be dropped without a trace.
func (p *Poller) Accept(r Resource, gen uint64) error {
	if p.state(r).gen != gen {
		return ErrStaleResponse
	}
	return nil
}

// Epoch identifies the current run of a resource's cycle. Timer events
// stamped with an older epoch belong to a chain that Start has replaced.
func (p *Poller) Epoch(r Resource) uint64 {
	return p.state(r).epoch
}

// Interval reports the configured poll interval for a resource.
func (p *Poller) Interval(r Resource) time.Duration {
	return p.state(r).interval
}

// SetInterval updates the interval; it takes effect on the next tick
// scheduled by the caller.
func (p *Poller) SetInterval(r Resource, interval time.Duration) {
	p.state(r).interval = interval
}

// Scope reports the active project scope (zero when unscoped).
func (p *Poller) Scope(r Resource) int {
	return p.state(r).projectID
}

// Running reports whether the cycle is active.
func (p *Poller) Running(r Resource) bool {
	return p.state(r).running
}

package api

import "time"

// Scan lifecycle states as reported by the service. The client never
// invents transitions: status only changes through polled snapshots.
const (
	ScanQueued   = "queued"
	ScanRunning  = "running"
	ScanStopping = "stopping"
	ScanStopped  = "stopped"
	ScanDone     = "done"
	ScanFailed   = "failed"
)

// DefaultTools are the scanners the service ships with.
var DefaultTools = []string{"amass", "subfinder", "theharvester", "hibp"}

type Project struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ClientID *int   `json:"client_id,omitempty"`
}

type Scan struct {
	ID         int        `json:"id"`
	ProjectID  int        `json:"project_id"`
	Target     string     `json:"target"`
	Status     string     `json:"status"`
	Tools      []string   `json:"tools"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type Finding struct {
	ID       int            `json:"id"`
	ScanID   int            `json:"scan_id"`
	Tool     string         `json:"tool"`
	Category string         `json:"category"`
	Value    string         `json:"value"`
	Severity string         `json:"severity"`
	Meta     map[string]any `json:"meta,omitempty"`
}

type Schedule struct {
	ID              int        `json:"id"`
	ProjectID       *int       `json:"project_id"`
	Target          string     `json:"target"`
	Tools           []string   `json:"tools"`
	IntervalMinutes int        `json:"interval_minutes"`
	Enabled         bool       `json:"enabled"`
	NextRunAt       time.Time  `json:"next_run_at"`
	LastRunAt       *time.Time `json:"last_run_at,omitempty"`
}

type ScanRequest struct {
	ProjectID int      `json:"project_id"`
	Target    string   `json:"target"`
	Tools     []string `json:"tools"`
}

type ScheduleRequest struct {
	ProjectID       *int     `json:"project_id,omitempty"`
	Target          string   `json:"target"`
	Tools           []string `json:"tools"`
	IntervalMinutes int      `json:"interval_minutes"`
}

// SchedulePatch carries only the fields a partial update should touch.
// Nil pointers are omitted from the wire representation, so an edit
// session can send exactly the fields the user changed.
type SchedulePatch struct {
	Target          *string   `json:"target,omitempty"`
	Tools           *[]string `json:"tools,omitempty"`
	IntervalMinutes *int      `json:"interval_minutes,omitempty"`
	Enabled         *bool     `json:"enabled,omitempty"`
}

// Empty reports whether the patch would touch nothing.
func (p SchedulePatch) Empty() bool {
	return p.Target == nil && p.Tools == nil && p.IntervalMinutes == nil && p.Enabled == nil
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to the dashboard service over HTTP. All methods take a
// context so callers can bind request lifetime to their own teardown.
type Client struct {
	base   string
	wsBase string
	http   *http.Client
}

// NewClient builds a client for the given HTTP base URL. wsBase is the
// WebSocket counterpart used for log streams; if empty it is derived from
// base by swapping the scheme.
func NewClient(base, wsBase string) *Client {
	base = strings.TrimRight(base, "/")
	if wsBase == "" {
		wsBase = deriveWSBase(base)
	}
	return &Client{
		base:   base,
		wsBase: strings.TrimRight(wsBase, "/"),
		http:   &http.Client{Timeout: defaultTimeout},
	}
}

func deriveWSBase(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}

// BaseURL returns the HTTP base the client was built with.
func (c *Client) BaseURL() string { return c.base }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	u := c.base + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &ServerError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{URL: u, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// Health probes the service.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var out []Project
	err := c.do(ctx, http.MethodGet, "/api/projects", nil, &out)
	return out, err
}

func (c *Client) CreateProject(ctx context.Context, name string) (Project, error) {
	var out Project
	err := c.do(ctx, http.MethodPost, "/api/projects", map[string]string{"name": name}, &out)
	return out, err
}

func (c *Client) DeleteProject(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/projects/%d", id), nil, nil)
}

// ListScans fetches the scan collection. A zero projectID means no scope:
// the full collection is returned.
func (c *Client) ListScans(ctx context.Context, projectID int) ([]Scan, error) {
	path := "/api/scans"
	if projectID > 0 {
		path += "?project_id=" + url.QueryEscape(fmt.Sprint(projectID))
	}
	var out []Scan
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) CreateScan(ctx context.Context, req ScanRequest) (Scan, error) {
	var out Scan
	err := c.do(ctx, http.MethodPost, "/api/scans", req, &out)
	return out, err
}

func (c *Client) StopScan(ctx context.Context, id int) (Scan, error) {
	var out Scan
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/scans/%d/stop", id), nil, &out)
	return out, err
}

func (c *Client) RerunScan(ctx context.Context, id int) (Scan, error) {
	var out Scan
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/scans/%d/rerun", id), nil, &out)
	return out, err
}

func (c *Client) DeleteScan(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/scans/%d", id), nil, nil)
}

func (c *Client) ListFindings(ctx context.Context, scanID int) ([]Finding, error) {
	var out []Finding
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/scans/%d/findings", scanID), nil, &out)
	return out, err
}

// ListSchedules fetches the schedule collection, optionally scoped to a
// project (zero means unscoped).
func (c *Client) ListSchedules(ctx context.Context, projectID int) ([]Schedule, error) {
	path := "/api/schedules"
	if projectID > 0 {
		path += "?project_id=" + url.QueryEscape(fmt.Sprint(projectID))
	}
	var out []Schedule
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) CreateSchedule(ctx context.Context, req ScheduleRequest) (Schedule, error) {
	var out Schedule
	err := c.do(ctx, http.MethodPost, "/api/schedules", req, &out)
	return out, err
}

func (c *Client) UpdateSchedule(ctx context.Context, id int, patch SchedulePatch) (Schedule, error) {
	var out Schedule
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/schedules/%d", id), patch, &out)
	return out, err
}

func (c *Client) DeleteSchedule(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/schedules/%d", id), nil, nil)
}

// ExportURL returns the download link for a scan export. Export generation
// is owned by the service; the client only surfaces the link.
func (c *Client) ExportURL(scanID int, format string) string {
	return fmt.Sprintf("%s/api/exports/%d.%s", c.base, scanID, format)
}

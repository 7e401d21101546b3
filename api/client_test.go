package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientListScansScopedQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]Scan{{ID: 1, ProjectID: 3}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.ListScans(context.Background(), 3); err != nil {
		t.Fatalf("ListScans: %v", err)
	}
	if gotQuery != "project_id=3" {
		t.Fatalf("query = %q, want project_id=3", gotQuery)
	}

	if _, err := c.ListScans(context.Background(), 0); err != nil {
		t.Fatalf("unscoped ListScans: %v", err)
	}
	if gotQuery != "" {
		t.Fatalf("unscoped query = %q, want empty", gotQuery)
	}
}

func TestClientServerErrorCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"scan not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.StopScan(context.Background(), 99)

	var serr *ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want ServerError", err)
	}
	if serr.Status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", serr.Status)
	}
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound(%v) = false", err)
	}
}

func TestClientIsNotFoundOnlyFor404(t *testing.T) {
	if IsNotFound(&ServerError{Status: http.StatusInternalServerError}) {
		t.Fatal("500 classified as not-found")
	}
	if IsNotFound(errors.New("plain error")) {
		t.Fatal("untyped error classified as not-found")
	}
}

func TestClientTransportErrorWrapsCause(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, "")
	err := c.Health(context.Background())

	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if terr.Unwrap() == nil {
		t.Fatal("transport error lost its cause")
	}
}

func TestSchedulePatchOmitsUntouchedFields(t *testing.T) {
	v := 45
	data, err := json.Marshal(SchedulePatch{IntervalMinutes: &v})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"interval_minutes":45}` {
		t.Fatalf("patch wire form = %s", data)
	}

	if !(SchedulePatch{}).Empty() {
		t.Fatal("zero patch not Empty")
	}
	if (SchedulePatch{IntervalMinutes: &v}).Empty() {
		t.Fatal("non-zero patch reported Empty")
	}
}

func TestClientDerivesWSBaseFromHTTPBase(t *testing.T) {
	cases := []struct{ base, want string }{
		{"http://localhost:8000", "ws://localhost:8000"},
		{"https://dash.example.com", "wss://dash.example.com"},
	}
	for _, tc := range cases {
		c := NewClient(tc.base, "")
		if c.wsBase != tc.want {
			t.Errorf("wsBase for %s = %q, want %q", tc.base, c.wsBase, tc.want)
		}
	}

	c := NewClient("http://localhost:8000", "ws://other:9000/")
	if c.wsBase != "ws://other:9000" {
		t.Fatalf("explicit wsBase not honored: %q", c.wsBase)
	}
}

func TestClientExportURL(t *testing.T) {
	c := NewClient("http://localhost:8000/", "")
	if got := c.ExportURL(12, "csv"); got != "http://localhost:8000/api/exports/12.csv" {
		t.Fatalf("export URL = %q", got)
	}
}

func TestClientUpdateSchedulePatchRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/schedules/5" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var p SchedulePatch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode: %v", err)
		}
		if p.Target == nil || *p.Target != "new.example.com" {
			t.Errorf("patch = %+v", p)
		}
		json.NewEncoder(w).Encode(Schedule{ID: 5, Target: "new.example.com", IntervalMinutes: 60})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	target := "new.example.com"
	sch, err := c.UpdateSchedule(context.Background(), 5, SchedulePatch{Target: &target})
	if err != nil {
		t.Fatalf("UpdateSchedule: %v", err)
	}
	if sch.Target != "new.example.com" {
		t.Fatalf("schedule = %+v", sch)
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"telemetry_bridge/internal/models"
	"telemetry_bridge/internal/service"
)

func TestEventsHandler_ListAndValidation(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	events := []models.BridgeEvent{
		{EventID: "e1", OccurredAt: now, Type: "MODE", Description: "simulation"},
		{EventID: "e2", OccurredAt: now.Add(1 * time.Second), Type: "COMMAND", Description: "RELAY:1"},
	}
	logs := &mockEventLog{resp: events}
	r := newTestRouter(&service.Service{EventLog: logs})

	// invalid 'from' → 400
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/events/?from=notatime", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid 'from', got %d", w.Code)
	}

	// from after to → 400, service not called
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/events/?from=2025-02-02&to=2025-02-01", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted range, got %d", w.Code)
	}
	if logs.calls != 0 {
		t.Fatalf("service should not be called on validation errors, calls=%d", logs.calls)
	}

	// valid range and lowercase type
	w = httptest.NewRecorder()
	q := "/api/v1/events/?from=" + now.Format(time.RFC3339) + "&to=" + now.Add(2*time.Second).Format(time.RFC3339) + "&type=command"
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, q, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("events status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int                  `json:"count"`
		Events []models.BridgeEvent `json:"events"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Events) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}
	if logs.lastType != "COMMAND" {
		t.Fatalf("expected lastType COMMAND, got %q", logs.lastType)
	}
	if !logs.lastFrom.Equal(now) {
		t.Fatalf("from passed as %v, want %v", logs.lastFrom, now)
	}
}

func TestEventsHandler_DateOnlyToIsEndOfDay(t *testing.T) {
	logs := &mockEventLog{}
	r := newTestRouter(&service.Service{EventLog: logs})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/events/?to=2025-08-31", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	want := time.Date(2025, time.August, 31, 23, 59, 59, 999999999, time.UTC)
	if !logs.lastTo.Equal(want) {
		t.Fatalf("to=%v, want %v", logs.lastTo, want)
	}
}

func TestEventsHandler_Errors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"journal disabled", service.ErrJournalDisabled, http.StatusServiceUnavailable},
		{"storage failure", errors.New("database is locked"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{EventLog: &mockEventLog{err: tc.err}})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/events/", nil))
			if w.Code != tc.want {
				t.Fatalf("status=%d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestParseQueryTime(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2025-08-27T15:04:05Z", time.Date(2025, 8, 27, 15, 4, 5, 0, time.UTC), true},
		{"2025-08-27T17:04:05+02:00", time.Date(2025, 8, 27, 15, 4, 5, 0, time.UTC), true},
		{"2025-08-27 15:04:05", time.Date(2025, 8, 27, 15, 4, 5, 0, time.UTC), true},
		{"2025-08-27", time.Date(2025, 8, 27, 0, 0, 0, 0, time.UTC), true},
		{"27/08/2025", time.Time{}, false},
	}
	for _, tc := range cases {
		got, err := parseQueryTime(tc.in)
		if (err == nil) != tc.ok {
			t.Fatalf("parseQueryTime(%q) err=%v, ok want %v", tc.in, err, tc.ok)
		}
		if tc.ok && !got.Equal(tc.want) {
			t.Fatalf("parseQueryTime(%q)=%v, want %v", tc.in, got, tc.want)
		}
	}
}

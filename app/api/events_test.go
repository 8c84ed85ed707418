package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ehime-live/live-schedule/app/database"
	"github.com/ehime-live/live-schedule/app/event"
)

func jsonRequest(method, target, body, token string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dest); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

func TestAPIListEvents(t *testing.T) {
	s := newTestServer(t)
	seedEvents(t, s)

	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{"all sorted by date", "", []string{"Toyo Rock Fest", "Summer Session", "Acoustic Evening"}},
		{"descending", "?order=desc", []string{"Acoustic Evening", "Summer Session", "Toyo Rock Fest"}},
		{"year", "?year=2025", []string{"Summer Session", "Acoustic Evening"}},
		{"year and month", "?year=2025&month=9", []string{"Acoustic Evening"}},
		{"area", "?area=東予", []string{"Toyo Rock Fest"}},
		{"venue overrides area", "?area=東予&venue=necco", []string{"Acoustic Evening"}},
		{"area without venues", "?area=南予", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(httptest.NewRequest(http.MethodGet, "/api/events"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
			}

			var resp eventListResponse
			decodeJSON(t, w, &resp)

			if resp.Total != len(tt.expected) || len(resp.Events) != len(tt.expected) {
				t.Fatalf("Expected %d events, got %d", len(tt.expected), len(resp.Events))
			}
			for i, title := range tt.expected {
				if resp.Events[i].Title != title {
					t.Errorf("Expected event %d to be %q, got %q", i, title, resp.Events[i].Title)
				}
			}
		})
	}
}

func TestAPIListEventsEmptyArray(t *testing.T) {
	s := newTestServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/events?area=南予", nil))
	if !strings.Contains(w.Body.String(), `"events":[]`) {
		t.Errorf("Expected empty events array, got %s", w.Body.String())
	}
}

func TestAPIListEventsInvalidFilter(t *testing.T) {
	s := newTestServer(t)

	for _, query := range []string{"?month=3", "?year=2025&month=13", "?area=unknown", "?sort=title", "?order=sideways"} {
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/events"+query, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for %s, got %d", query, w.Code)
			continue
		}

		var resp errorResponse
		decodeJSON(t, w, &resp)
		if resp.Code != codeInvalidFilter {
			t.Errorf("Expected code %s for %s, got %s", codeInvalidFilter, query, resp.Code)
		}
	}
}

func TestAPIEventOptions(t *testing.T) {
	s := newTestServer(t)
	seedEvents(t, s)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/events/options?year=2025&area=中予", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var opts event.Options
	decodeJSON(t, w, &opts)

	if fmt.Sprint(opts.Years) != "[2024 2025]" {
		t.Errorf("Expected years [2024 2025], got %v", opts.Years)
	}
	if fmt.Sprint(opts.Months) != "[1 2 3 4 5 6 7 8 9]" {
		t.Errorf("Expected months up to September, got %v", opts.Months)
	}
	if len(opts.Venues) != 5 || opts.Venues[0] != "Double-u Studio" {
		t.Errorf("Expected the five 中予 venues, got %v", opts.Venues)
	}
}

func TestAPIGetEvent(t *testing.T) {
	s := newTestServer(t)
	events := seedEvents(t, s)

	w := s.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/events/%d", events[0].ID), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var e database.Event
	decodeJSON(t, w, &e)
	if e.Title != "Summer Session" || e.Venue != "WStudioRED" || e.Date != "2025-08-24" {
		t.Errorf("Unexpected event: %+v", e)
	}

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/events/9999", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/events/abc", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), codeInvalidID) {
		t.Errorf("Expected invalid_id code, got %s", w.Body.String())
	}
}

func TestAPIMutationsRequireAuth(t *testing.T) {
	s := newTestServer(t)
	events := seedEvents(t, s)
	target := fmt.Sprintf("/api/events/%d", events[0].ID)

	requests := []*http.Request{
		jsonRequest(http.MethodPost, "/api/events", `{"title":"x"}`, ""),
		jsonRequest(http.MethodPut, target, `{"title":"x"}`, ""),
		jsonRequest(http.MethodDelete, target, "", ""),
		jsonRequest(http.MethodPut, target, `{"title":"x"}`, "not-a-session"),
	}

	for _, req := range requests {
		w := s.do(req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401 for %s %s, got %d", req.Method, req.URL.Path, w.Code)
		}
	}

	if count, _ := s.events.GetEventCount(context.Background()); count != 3 {
		t.Errorf("Expected events to be untouched, got count %d", count)
	}
}

func TestAPICreateEventValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	w := s.do(jsonRequest(http.MethodPost, "/api/events", `{"title":"  ","link":"not a url","date":"24/08/2025"}`, token))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}

	var resp errorResponse
	decodeJSON(t, w, &resp)

	if resp.Code != codeValidationFailed {
		t.Errorf("Expected code %s, got %s", codeValidationFailed, resp.Code)
	}
	expected := map[string]string{
		"title":   "Title is required",
		"link":    "Must be a valid URL",
		"content": "Content is required",
		"venue":   "Venue is required",
		"date":    "Date must be YYYY-MM-DD",
	}
	for field, msg := range expected {
		if resp.Fields[field] != msg {
			t.Errorf("Expected %s error %q, got %q", field, msg, resp.Fields[field])
		}
	}

	w = s.do(jsonRequest(http.MethodPost, "/api/events", `{"title":`, token))
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), codeInvalidRequestBody) {
		t.Errorf("Expected invalid_request_body for malformed JSON, got %d %s", w.Code, w.Body.String())
	}
}

func TestAPIEventLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	body := `{"title":"Jazz Night","content":"Trio","venue":"necco","date":"2025-10-10","fee":"","link":"https://example.com/jazz"}`
	w := s.do(jsonRequest(http.MethodPost, "/api/events", body, token))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var created database.Event
	decodeJSON(t, w, &created)
	if created.ID == 0 || created.Title != "Jazz Night" || created.CreatedAt.IsZero() {
		t.Fatalf("Unexpected created event: %+v", created)
	}

	target := fmt.Sprintf("/api/events/%d", created.ID)
	body = `{"title":"Jazz Night Vol.2","content":"Quartet","venue":"necco","date":"2025-10-11","fee":"2,000円"}`
	w = s.do(jsonRequest(http.MethodPut, target, body, token))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated database.Event
	decodeJSON(t, w, &updated)
	if updated.Title != "Jazz Night Vol.2" || updated.Date != "2025-10-11" || updated.Fee != "2,000円" {
		t.Errorf("Unexpected updated event: %+v", updated)
	}
	if updated.Link != "" {
		t.Errorf("Expected full-record update to clear link, got %q", updated.Link)
	}

	w = s.do(jsonRequest(http.MethodPut, "/api/events/9999", body, token))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 updating missing event, got %d", w.Code)
	}

	w = s.do(jsonRequest(http.MethodDelete, target, "", token))
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", w.Code)
	}

	w = s.do(jsonRequest(http.MethodDelete, target, "", token))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 deleting twice, got %d", w.Code)
	}

	w = s.do(httptest.NewRequest(http.MethodGet, target, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", w.Code)
	}
}

func TestAPIHistory(t *testing.T) {
	s := newTestServer(t)
	seedEvents(t, s)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/history", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		Groups []event.HistoryGroup `json:"groups"`
	}
	decodeJSON(t, w, &resp)

	if len(resp.Groups) != 1 {
		t.Fatalf("Expected 1 history group, got %d", len(resp.Groups))
	}
	if len(resp.Groups[0].Events) != 3 {
		t.Errorf("Expected 3 events in group, got %d", len(resp.Groups[0].Events))
	}
	if resp.Groups[0].Events[0].Title != "Toyo Rock Fest" {
		t.Errorf("Expected newest event first, got %s", resp.Groups[0].Events[0].Title)
	}

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/history?limit=1", nil))
	decodeJSON(t, w, &resp)
	if len(resp.Groups) != 1 || len(resp.Groups[0].Events) != 1 {
		t.Errorf("Expected limit to apply, got %+v", resp.Groups)
	}

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/history?limit=-1", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for negative limit, got %d", w.Code)
	}
}

func TestAPIDataSources(t *testing.T) {
	s := newTestServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/data-sources", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		Sources []struct {
			Venue string `json:"venue"`
		} `json:"sources"`
		CommonProcessing string   `json:"common_processing"`
		ExtractionRules  []string `json:"extraction_rules"`
	}
	decodeJSON(t, w, &resp)

	if len(resp.Sources) != 8 {
		t.Fatalf("Expected 8 data sources, got %d", len(resp.Sources))
	}
	if resp.Sources[0].Venue != "Double-u Studio" || resp.Sources[7].Venue != "WStudioRED" {
		t.Errorf("Expected sources sorted by venue, got %v", resp.Sources)
	}
	if resp.CommonProcessing == "" || len(resp.ExtractionRules) == 0 {
		t.Error("Expected processing notes and extraction rules")
	}
}

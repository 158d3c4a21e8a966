package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nathannam/aau-tryouts/internal/config"
	"github.com/nathannam/aau-tryouts/internal/logger"
	"github.com/nathannam/aau-tryouts/internal/scheduler"
	"github.com/nathannam/aau-tryouts/internal/scraper"
	"github.com/nathannam/aau-tryouts/internal/storage"
	"github.com/nathannam/aau-tryouts/internal/tryouts"
)

func newTestRouter(t *testing.T, orgs []config.Organization) http.Handler {
	t.Helper()

	cfg := config.Default()
	cfg.Organizations = orgs
	cfg.Storage.DataDir = t.TempDir()

	log := logger.New(logger.LevelError, io.Discard)
	store, err := storage.New(cfg.Storage.DataDir, log)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	sc := scraper.New(2*time.Second, log)
	sched := scheduler.New(cfg, sc, store, log)

	listings, err := tryouts.Load()
	if err != nil {
		t.Fatalf("failed to load tryouts: %v", err)
	}

	return NewRouter(NewHandlers(sched, store, listings, log))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

func TestTriggerCheck(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>Tryout registration open</body></html>"))
	}))
	defer site.Close()

	router := newTestRouter(t, []config.Organization{
		{Name: "Oakland Soldiers", Website: site.URL, CheckPatterns: []string{"tryout"}},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scheduler/check", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected %d", rec.Code, http.StatusOK)
	}

	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Errorf("success = %v, expected true", body["success"])
	}
	// First run: everything is first-seen, so one change
	if body["changesCount"] != float64(1) {
		t.Errorf("changesCount = %v, expected 1", body["changesCount"])
	}
	if msg, _ := body["message"].(string); !strings.Contains(msg, "Checked 1 websites") {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestSchedulerStatus(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scheduler/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected %d", rec.Code, http.StatusOK)
	}

	body := decodeBody(t, rec)
	sched, ok := body["scheduler"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing scheduler object in %v", body)
	}
	if sched["running"] != false {
		t.Errorf("running = %v, expected false", sched["running"])
	}
	if sched["schedule"] != "0 9 * * *" {
		t.Errorf("schedule = %v, expected default", sched["schedule"])
	}
	summary, ok := body["summary"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing summary object in %v", body)
	}
	if summary["totalChecks"] != float64(0) {
		t.Errorf("totalChecks = %v, expected 0", summary["totalChecks"])
	}
}

func TestSchedulerHistory(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>spring tryouts</body></html>"))
	}))
	defer site.Close()

	router := newTestRouter(t, []config.Organization{
		{Name: "Bay City Basketball", Website: site.URL},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scheduler/history", nil))
	body := decodeBody(t, rec)
	if body["count"] != float64(0) {
		t.Errorf("count = %v, expected 0 before any runs", body["count"])
	}

	// One run adds one history entry
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scheduler/check", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("check failed with status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scheduler/history", nil))
	body = decodeBody(t, rec)
	if body["count"] != float64(1) {
		t.Errorf("count = %v, expected 1 after a run", body["count"])
	}
}

func TestListTryouts(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tryouts", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected %d", rec.Code, http.StatusOK)
	}

	body := decodeBody(t, rec)
	all, ok := body["tryouts"].([]interface{})
	if !ok || len(all) == 0 {
		t.Fatalf("expected non-empty tryouts list, got %v", body["tryouts"])
	}
	if body["count"] != float64(len(all)) {
		t.Errorf("count = %v, expected %d", body["count"], len(all))
	}
	if cities, ok := body["cities"].([]interface{}); !ok || len(cities) == 0 {
		t.Error("expected non-empty cities list")
	}
}

func TestListTryoutsFiltered(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tryouts?gender=Boys&city=Oakland", nil))

	body := decodeBody(t, rec)
	filtered, _ := body["tryouts"].([]interface{})
	for _, raw := range filtered {
		tr := raw.(map[string]interface{})
		if tr["gender"] != "Boys" {
			t.Errorf("filter leaked gender %v", tr["gender"])
		}
		if tr["city"] != "Oakland" {
			t.Errorf("filter leaked city %v", tr["city"])
		}
	}
}

func TestTryoutCalendar(t *testing.T) {
	router := newTestRouter(t, nil)

	listings, err := tryouts.Load()
	if err != nil {
		t.Fatalf("failed to load tryouts: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tryouts/"+listings[0].ID+"/calendar", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q, expected text/calendar", ct)
	}
	if !strings.Contains(rec.Body.String(), "BEGIN:VCALENDAR") {
		t.Error("response is not an iCalendar document")
	}
}

func TestTryoutCalendarNotFound(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tryouts/no-such-team/calendar", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, expected %d", rec.Code, http.StatusNotFound)
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected %d", rec.Code, http.StatusOK)
	}
	body := decodeBody(t, rec)
	if body["status"] != "ok" {
		t.Errorf("status = %v, expected ok", body["status"])
	}
}

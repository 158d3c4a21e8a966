package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nathannam/aau-tryouts/internal/calendar"
	"github.com/nathannam/aau-tryouts/internal/logger"
	"github.com/nathannam/aau-tryouts/internal/scheduler"
	"github.com/nathannam/aau-tryouts/internal/storage"
	"github.com/nathannam/aau-tryouts/internal/tryouts"
)

// Handlers holds dependencies for the API handlers.
type Handlers struct {
	sched   *scheduler.Scheduler
	store   *storage.Store
	tryouts []tryouts.Tryout
	log     *logger.Logger
}

// NewHandlers creates a new Handlers struct.
func NewHandlers(sched *scheduler.Scheduler, store *storage.Store, listings []tryouts.Tryout, log *logger.Logger) *Handlers {
	if log == nil {
		log = logger.Default()
	}
	return &Handlers{
		sched:   sched,
		store:   store,
		tryouts: listings,
		log:     log,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", nil, err)
	}
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// TriggerCheck runs a check cycle immediately and reports its outcome.
// The run is detached from the request context: once started, a client
// disconnect does not abort it.
func (h *Handlers) TriggerCheck(w http.ResponseWriter, r *http.Request) {
	h.log.Info("Manual check triggered", nil)
	result := h.sched.ExecuteRun(context.Background())

	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, map[string]interface{}{
		"success":      result.Success,
		"message":      result.Message,
		"changesCount": result.ChangesCount,
		"timestamp":    nowISO(),
	})
}

// SchedulerStatus reports the scheduler state merged with the stored summary.
func (h *Handlers) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scheduler": h.sched.GetStatus(),
		"summary":   h.store.Summary(),
		"timestamp": nowISO(),
	})
}

// SchedulerHistory returns the full retained history log.
func (h *Handlers) SchedulerHistory(w http.ResponseWriter, r *http.Request) {
	history := h.store.LoadHistory()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"history":   history,
		"count":     len(history),
		"timestamp": nowISO(),
	})
}

// ListTryouts returns the tryout listing, filtered and sorted by query
// parameters: q, ageGroup, gender, city (all repeatable except q), and sort
// (date, city, ageGroup).
func (h *Handlers) ListTryouts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filtered := tryouts.Filter(h.tryouts, tryouts.Filters{
		Query:     query.Get("q"),
		AgeGroups: query["ageGroup"],
		Genders:   query["gender"],
		Cities:    query["city"],
	})

	order := tryouts.SortOrder(query.Get("sort"))
	if order == "" {
		order = tryouts.SortByDate
	}
	tryouts.Sort(filtered, order)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tryouts":   filtered,
		"count":     len(filtered),
		"cities":    tryouts.Cities(h.tryouts),
		"timestamp": nowISO(),
	})
}

// TryoutCalendar serves an iCalendar document for a single tryout.
func (h *Handlers) TryoutCalendar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tr, ok := tryouts.ByID(h.tryouts, id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"error":     fmt.Sprintf("tryout not found: %s", id),
			"timestamp": nowISO(),
		})
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", tr.ID+".ics"))
	w.Write([]byte(calendar.GenerateICS(tr)))
}

// Healthz is the liveness probe.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

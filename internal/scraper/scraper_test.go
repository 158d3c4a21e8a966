package scraper

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nathannam/aau-tryouts/internal/config"
	"github.com/nathannam/aau-tryouts/internal/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.LevelError, io.Discard)
}

const samplePage = `<html><head><title>Test Hoops</title></head><body>
<h1>Spring TRYOUT Information</h1>
<p>Registration for 14U and 16U opens soon. See the Schedule page.</p>
</body></html>`

func TestCheckSuccess(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	org := config.Organization{
		Name:          "Test Hoops",
		Website:       server.URL,
		CheckPatterns: []string{"tryout", "14U", "17U", "registration"},
	}

	s := New(5*time.Second, testLogger())
	result := s.Check(context.Background(), org)

	if result.Error != "" {
		t.Fatalf("unexpected error: %s", result.Error)
	}
	if result.OrganizationName != "Test Hoops" {
		t.Errorf("expected organization name to be set, got %q", result.OrganizationName)
	}
	if result.SourceURL != server.URL {
		t.Errorf("expected source URL %q, got %q", server.URL, result.SourceURL)
	}
	if result.Fingerprint == "" {
		t.Error("expected non-empty fingerprint on success")
	}
	if result.CheckedAt.IsZero() {
		t.Error("expected CheckedAt to be set")
	}
	if gotUA != UserAgent {
		t.Errorf("expected User-Agent %q, got %q", UserAgent, gotUA)
	}

	// Matches are case-insensitive and preserve configured pattern order;
	// "17U" does not appear on the page.
	want := []string{"tryout", "14U", "registration"}
	if len(result.MatchedPatterns) != len(want) {
		t.Fatalf("expected %d matched patterns, got %v", len(want), result.MatchedPatterns)
	}
	for i, p := range want {
		if result.MatchedPatterns[i] != p {
			t.Errorf("matched pattern %d = %q, expected %q", i, result.MatchedPatterns[i], p)
		}
	}
}

func TestCheckFingerprintStableAcrossFetches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	org := config.Organization{Name: "Test Hoops", Website: server.URL}

	s := New(5*time.Second, testLogger())
	first := s.Check(context.Background(), org)
	second := s.Check(context.Background(), org)

	if first.Fingerprint != second.Fingerprint {
		t.Errorf("identical content produced different fingerprints: %s vs %s",
			first.Fingerprint, second.Fingerprint)
	}
}

func TestCheckHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	org := config.Organization{Name: "Broken", Website: server.URL, CheckPatterns: []string{"tryout"}}

	s := New(5*time.Second, testLogger())
	result := s.Check(context.Background(), org)

	if result.Error == "" {
		t.Fatal("expected error for 404 response")
	}
	if result.Fingerprint != "" {
		t.Errorf("expected empty fingerprint on failure, got %q", result.Fingerprint)
	}
	if len(result.MatchedPatterns) != 0 {
		t.Errorf("expected no matched patterns on failure, got %v", result.MatchedPatterns)
	}
	if result.Changed {
		t.Error("a failed fetch must never be reported as a change")
	}
}

func TestCheckTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	org := config.Organization{Name: "Slow", Website: server.URL}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	s := New(100*time.Millisecond, testLogger())
	result := s.Check(ctx, org)

	if result.Error == "" {
		t.Fatal("expected error for timed-out fetch")
	}
	if result.Fingerprint != "" {
		t.Errorf("expected empty fingerprint on timeout, got %q", result.Fingerprint)
	}
}

func TestCheckRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	org := config.Organization{Name: "Flaky", Website: server.URL, CheckPatterns: []string{"tryout"}}

	s := New(5*time.Second, testLogger())
	result := s.Check(context.Background(), org)

	if result.Error != "" {
		t.Fatalf("expected retry to recover from transient 502, got error: %s", result.Error)
	}
	if calls.Load() < 2 {
		t.Errorf("expected at least 2 attempts, got %d", calls.Load())
	}
}

func TestCheckAllPreservesOrder(t *testing.T) {
	// Each site responds with a different delay so completion order differs
	// from configuration order.
	delays := map[string]time.Duration{"/a": 150 * time.Millisecond, "/b": 50 * time.Millisecond, "/c": 0}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delays[r.URL.Path])
		w.Write([]byte("<html><body>page " + r.URL.Path + "</body></html>"))
	}))
	defer server.Close()

	orgs := []config.Organization{
		{Name: "A", Website: server.URL + "/a"},
		{Name: "B", Website: server.URL + "/b"},
		{Name: "C", Website: server.URL + "/c"},
	}

	s := New(5*time.Second, testLogger())
	results := s.CheckAll(context.Background(), orgs)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, name := range []string{"A", "B", "C"} {
		if results[i].OrganizationName != name {
			t.Errorf("results[%d] = %s, expected %s", i, results[i].OrganizationName, name)
		}
	}
}

func TestCheckAllOneFailureDoesNotBlockOthers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			http.Error(w, "nope", http.StatusForbidden)
			return
		}
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	orgs := []config.Organization{
		{Name: "Good", Website: server.URL + "/good", CheckPatterns: []string{"tryout"}},
		{Name: "Bad", Website: server.URL + "/bad"},
	}

	s := New(5*time.Second, testLogger())
	results := s.CheckAll(context.Background(), orgs)

	if results[0].Error != "" {
		t.Errorf("expected first site to succeed, got error: %s", results[0].Error)
	}
	if !results[1].Failed() {
		t.Error("expected second site to fail")
	}
}

package check

import (
	"crypto/sha1"
	"fmt"
	"time"
)

// Result is the outcome of checking a single organization's website during
// one run. A failed fetch is still a valid Result: Error carries the failure
// message, Fingerprint is empty, and Changed is false.
type Result struct {
	OrganizationName string    `json:"organizationName"`
	SourceURL        string    `json:"sourceUrl"`
	Fingerprint      string    `json:"fingerprint"`
	MatchedPatterns  []string  `json:"matchedPatterns"`
	CheckedAt        time.Time `json:"checkedAt"`
	Changed          bool      `json:"changed"`
	Error            string    `json:"error,omitempty"`
}

// Failed reports whether the fetch behind this result failed.
func (r Result) Failed() bool {
	return r.Error != ""
}

// HistoryEntry is one run's worth of results in the append-only history log.
type HistoryEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Results     []Result  `json:"results"`
	ChangeCount int       `json:"changeCount"`
}

// Summary is a derived view over the history log used by the status endpoint.
type Summary struct {
	TotalChecks   int        `json:"totalChecks"`
	LastCheck     *time.Time `json:"lastCheck"`
	RecentChanges []Result   `json:"recentChanges"`
}

// Fingerprint computes a deterministic signature of extracted page text.
// Identical text always yields the same fingerprint, and any single-character
// difference yields a different fingerprint with overwhelming likelihood.
//
// This is a change signal, not a security primitive. Empty text fingerprints
// to sha1(""), a defined value distinct from the empty-string sentinel that
// marks a failed fetch on Result.Fingerprint.
func Fingerprint(text string) string {
	sum := sha1.Sum([]byte(text))
	return fmt.Sprintf("%x", sum)
}

// CountChanged returns the number of results flagged as changed.
func CountChanged(results []Result) int {
	count := 0
	for _, r := range results {
		if r.Changed {
			count++
		}
	}
	return count
}

// ChangedResults returns the subset of results flagged as changed, preserving
// order.
func ChangedResults(results []Result) []Result {
	changed := make([]Result, 0)
	for _, r := range results {
		if r.Changed {
			changed = append(changed, r)
		}
	}
	return changed
}

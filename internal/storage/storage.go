package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nathannam/aau-tryouts/internal/check"
	"github.com/nathannam/aau-tryouts/internal/logger"
)

const (
	latestFile  = "latest-results.json"
	historyFile = "history.json"

	// retention bounds the history log; entries older than this relative to
	// the append time are pruned as a side effect of each append.
	retention = 30 * 24 * time.Hour
)

// Store handles persistence of check results and history
type Store struct {
	dataDir string
	log     *logger.Logger
}

// New creates a new Store rooted at dataDir, creating the directory if
// needed.
func New(dataDir string, log *logger.Logger) (*Store, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	if log == nil {
		log = logger.Default()
	}

	return &Store{
		dataDir: dataDir,
		log:     log,
	}, nil
}

func (s *Store) latestPath() string {
	return filepath.Join(s.dataDir, latestFile)
}

func (s *Store) historyPath() string {
	return filepath.Join(s.dataDir, historyFile)
}

// LoadPrevious returns the most recently saved results, or an empty list if
// none exist yet. A missing or corrupt file is treated as "no prior data";
// this method never fails.
func (s *Store) LoadPrevious() []check.Result {
	data, err := os.ReadFile(s.latestPath())
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("Failed to read previous results", logger.Fields{
				"path": s.latestPath(), "error": err.Error(),
			})
		}
		return []check.Result{}
	}

	var results []check.Result
	if err := json.Unmarshal(data, &results); err != nil {
		s.log.Warn("Previous results file is malformed, treating as empty", logger.Fields{
			"path": s.latestPath(), "error": err.Error(),
		})
		return []check.Result{}
	}

	return results
}

// SaveResults overwrites the latest-results document with the given list.
func (s *Store) SaveResults(results []check.Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}

	if err := os.WriteFile(s.latestPath(), data, 0644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}

	s.log.Debug("Saved results", logger.Fields{
		"path": s.latestPath(), "count": len(results),
	})
	return nil
}

// AppendHistory loads the existing history, appends one entry for the given
// results, prunes entries older than 30 days, and writes the log back.
func (s *Store) AppendHistory(results []check.Result) error {
	return s.appendHistoryAt(results, time.Now().UTC())
}

func (s *Store) appendHistoryAt(results []check.Result, now time.Time) error {
	history := s.LoadHistory()

	history = append(history, check.HistoryEntry{
		Timestamp:   now,
		Results:     results,
		ChangeCount: check.CountChanged(results),
	})

	cutoff := now.Add(-retention)
	retained := history[:0]
	for _, entry := range history {
		if entry.Timestamp.After(cutoff) {
			retained = append(retained, entry)
		}
	}

	data, err := json.MarshalIndent(retained, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	if err := os.WriteFile(s.historyPath(), data, 0644); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}

	s.log.Debug("Appended to history", logger.Fields{
		"path": s.historyPath(), "entries": len(retained),
	})
	return nil
}

// LoadHistory returns the full retained history, oldest first. A missing or
// corrupt file yields an empty list; this method never fails.
func (s *Store) LoadHistory() []check.HistoryEntry {
	data, err := os.ReadFile(s.historyPath())
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("Failed to read history", logger.Fields{
				"path": s.historyPath(), "error": err.Error(),
			})
		}
		return []check.HistoryEntry{}
	}

	var history []check.HistoryEntry
	if err := json.Unmarshal(data, &history); err != nil {
		s.log.Warn("History file is malformed, treating as empty", logger.Fields{
			"path": s.historyPath(), "error": err.Error(),
		})
		return []check.HistoryEntry{}
	}

	return history
}

// Summary derives the status view from the history log: total run count, the
// latest run's timestamp, and its changed results. Returns the neutral form
// when history is empty.
func (s *Store) Summary() check.Summary {
	history := s.LoadHistory()
	if len(history) == 0 {
		return check.Summary{RecentChanges: []check.Result{}}
	}

	latest := history[len(history)-1]
	ts := latest.Timestamp
	return check.Summary{
		TotalChecks:   len(history),
		LastCheck:     &ts,
		RecentChanges: check.ChangedResults(latest.Results),
	}
}

package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"

	"github.com/nathannam/aau-tryouts/internal/check"
	"github.com/nathannam/aau-tryouts/internal/config"
	"github.com/nathannam/aau-tryouts/internal/logger"
)

const (
	// UserAgent identifies our traffic to site operators.
	UserAgent = "Mozilla/5.0 (compatible; AAU-Tryouts-Checker/1.0; +https://github.com/nathannam/aau-tryouts)"

	// DefaultTimeout bounds a single fetch attempt.
	DefaultTimeout = 10 * time.Second

	// maxRetries is the number of additional attempts after a transient
	// failure (network error or 5xx).
	maxRetries = 2
)

// Scraper fetches organization pages and produces check results
type Scraper struct {
	client *http.Client
	log    *logger.Logger
}

// New creates a new Scraper with the given per-attempt timeout. A
// non-positive timeout falls back to DefaultTimeout.
func New(timeout time.Duration, log *logger.Logger) *Scraper {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Default()
	}
	return &Scraper{
		client: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Check fetches one organization's page and returns its result. All failure
// modes resolve to a valid Result with Error set, an empty Fingerprint, and
// Changed=false; callers never need error handling for individual sites.
func (s *Scraper) Check(ctx context.Context, org config.Organization) check.Result {
	url := org.URL()
	start := time.Now()

	result := check.Result{
		OrganizationName: org.Name,
		SourceURL:        url,
		MatchedPatterns:  []string{},
		CheckedAt:        start.UTC(),
	}

	text, err := s.fetchText(ctx, url)
	logger.RecordTiming("scraper.fetch", time.Since(start))
	if err != nil {
		s.log.Warn("Scrape failed", logger.Fields{
			"organization": org.Name,
			"url":          url,
			"error":        err.Error(),
		})
		result.Error = err.Error()
		return result
	}

	for _, pattern := range org.CheckPatterns {
		if strings.Contains(text, strings.ToLower(pattern)) {
			result.MatchedPatterns = append(result.MatchedPatterns, pattern)
		}
	}

	result.Fingerprint = check.Fingerprint(text)

	s.log.Debug("Scrape completed", logger.Fields{
		"organization": org.Name,
		"url":          url,
		"patterns":     len(result.MatchedPatterns),
	})

	return result
}

// CheckAll fetches every organization concurrently. The batch completes only
// once every individual fetch has resolved, and the result slice preserves
// the order of the input list regardless of completion order.
func (s *Scraper) CheckAll(ctx context.Context, orgs []config.Organization) []check.Result {
	s.log.Info("Starting scrape", logger.Fields{"organizations": len(orgs)})

	results := make([]check.Result, len(orgs))

	var wg sync.WaitGroup
	for i, org := range orgs {
		wg.Add(1)
		go func(i int, org config.Organization) {
			defer wg.Done()
			results[i] = s.Check(ctx, org)
		}(i, org)
	}
	wg.Wait()

	s.log.Info("Completed scrape", logger.Fields{"organizations": len(results)})
	return results
}

// fetchText performs the GET and extracts lowercased visible body text.
// Transient failures (network errors, 5xx) are retried with exponential
// backoff; other failures are permanent.
func (s *Scraper) fetchText(ctx context.Context, url string) (string, error) {
	var text string

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", UserAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetching page: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("parsing HTML: %w", err))
		}

		text = strings.ToLower(strings.TrimSpace(doc.Find("body").Text()))
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}
	return text, nil
}

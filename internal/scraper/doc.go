// Package scraper fetches watched organization pages over HTTP and turns each
// page into a check.Result: visible body text is extracted, lowercased,
// matched against the organization's configured patterns, and fingerprinted
// for change detection.
//
// Fetching never returns an error to the caller. Timeouts, DNS failures,
// non-2xx statuses and parse errors all resolve to a Result carrying the
// error message, so one broken site can never abort a batch. CheckAll fans
// out over all organizations concurrently and preserves configuration order
// in its output.
package scraper

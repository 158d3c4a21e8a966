package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/nathannam/aau-tryouts/internal/check"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains the outcome of a one-shot check run.
type OutputResult struct {
	CheckedAt    time.Time      `json:"checkedAt"`
	Success      bool           `json:"success"`
	Message      string         `json:"message"`
	ChangesCount int            `json:"changesCount"`
	Changes      []check.Result `json:"changes,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeOutputJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeOutputJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if !result.Success {
		fmt.Fprintf(w, "Check failed: %s\n", result.Message)
		return nil
	}

	if result.ChangesCount == 0 {
		fmt.Fprintln(w, "No changes detected.")
		fmt.Fprintln(w, result.Message)
		return nil
	}

	for _, r := range result.Changes {
		fmt.Fprintf(w, "CHANGED: %s\n", r.OrganizationName)
		if verbose {
			fmt.Fprintf(w, "     URL: %s\n", r.SourceURL)
			if len(r.MatchedPatterns) > 0 {
				fmt.Fprintf(w, "     Matched: %v\n", r.MatchedPatterns)
			}
			fmt.Fprintf(w, "     Fingerprint: %s\n", r.Fingerprint)
		}
	}
	fmt.Fprintf(w, "\n%s\n", result.Message)

	return nil
}

// WriteHistory writes the retained run history in the specified format.
func WriteHistory(w io.Writer, history []check.HistoryEntry, format OutputFormat, verbose bool) error {
	if format == FormatJSON {
		return writeOutputJSON(w, history)
	}

	if len(history) == 0 {
		fmt.Fprintln(w, "No history recorded.")
		return nil
	}

	for _, entry := range history {
		fmt.Fprintf(w, "%s: %d checked, %d changed\n",
			entry.Timestamp.Format(time.RFC3339), len(entry.Results), entry.ChangeCount)
		if verbose {
			for _, r := range entry.Results {
				marker := " "
				if r.Changed {
					marker = "*"
				}
				if r.Failed() {
					marker = "!"
				}
				fmt.Fprintf(w, "  %s %s\n", marker, r.OrganizationName)
			}
		}
	}
	fmt.Fprintf(w, "\nTotal: %d runs\n", len(history))

	return nil
}

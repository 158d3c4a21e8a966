package notifier

import (
	"context"
	"strings"

	"github.com/nathannam/aau-tryouts/internal/check"
	"github.com/nathannam/aau-tryouts/internal/logger"
)

// LogNotifier writes one structured log line per changed organization.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a notifier backed by the given logger.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.Default()
	}
	return &LogNotifier{log: log}
}

// Notify logs each changed result with its matched patterns.
func (n *LogNotifier) Notify(ctx context.Context, changed []check.Result) error {
	for _, result := range changed {
		n.log.Info("Change detected", logger.Fields{
			"organization": result.OrganizationName,
			"url":          result.SourceURL,
			"patterns":     strings.Join(result.MatchedPatterns, ", "),
		})
	}
	return nil
}

// Package notifier delivers detected content changes to output sinks.
package notifier

import (
	"context"

	"github.com/nathannam/aau-tryouts/internal/check"
)

// Notifier is the interface for reporting changed results after a run.
// Implementations must tolerate failure: a notification error is logged by
// the caller and never fails the run that produced it.
type Notifier interface {
	// Notify reports the changed subset of a run's results.
	Notify(ctx context.Context, changed []check.Result) error
}

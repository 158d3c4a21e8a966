// Package check defines the data model for website check runs: the per-run,
// per-organization CheckResult, the append-only history log, and the derived
// summary view.
//
// It also holds the two pure pieces of the change-detection pipeline: the
// content fingerprint used to compare page text across runs, and the
// annotation step that marks each result as changed or unchanged against the
// previous run's snapshot.
package check

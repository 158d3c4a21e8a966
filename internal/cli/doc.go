// Package cli implements the command-line interface for aau-tryouts.
//
// The cli package provides the Cobra-based CLI with support for running the
// HTTP server with the background scheduler (serve), performing a one-shot
// check (check), and inspecting the retained run history (history). It
// coordinates the config, scraper, storage, scheduler, and notifier packages.
package cli

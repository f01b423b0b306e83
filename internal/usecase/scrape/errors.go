// Package scrape is the pipeline's entry point: it validates a scrape
// configuration, fans the search out through the dispatcher, walks every
// hit through dedup → enrich → extract, and hands the survivors to the
// persister, reporting progress the whole way.
package scrape

import "errors"

// Sentinel errors for scrape job execution.
var (
	// ErrFatalConfig indicates the job was rejected before dispatch:
	// no usable keywords, too many keywords, or a failed user lookup.
	// This, ErrUnknownUser and the job deadline are the only errors that
	// terminate a job.
	ErrFatalConfig = errors.New("scrape: fatal config")

	// ErrUnknownUser indicates the configured owner does not exist. The
	// job aborts; it never falls back to a different user.
	ErrUnknownUser = errors.New("scrape: unknown user")

	// ErrJobDeadline indicates the job's soft deadline expired before
	// all stages finished. The job stops before persistence, so no hits
	// from it are saved.
	ErrJobDeadline = errors.New("scrape: job deadline exceeded")
)

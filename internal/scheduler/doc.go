// Package scheduler runs one-shot engagement jobs keyed by id plus a small
// set of recurring maintenance crons.
//
// One-shot jobs use per-id time.Timer entries with a version counter that
// lets superseded timer callbacks detect themselves and exit. Fired tasks
// run on their own goroutine so dispatch never holds the job-table lock.
package scheduler

// Package executor runs the per-file transfers of a tree transfer with a
// bounded number in flight.
//
// Transfers are fail-soft: a failed file is recorded and the remaining
// files still run. The caller turns the aggregated result into an error.
package executor

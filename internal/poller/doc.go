// Package poller implements the per-minute collection cycle.
//
// The poller:
//   - Sleeps until the configured second of the next minute (default :59)
//   - Builds 1+6N fetch tasks for N symbols and runs them all concurrently
//   - Waits for every fetch; any failure aborts the cycle before writing
//   - Reassembles results into a (table, symbol) mapping
//   - Hands the mapping to a Persister and reports cycle timings
//
// Exactly one cycle runs at a time. A cycle that overruns the minute causes
// the missed wake-ups to be skipped, never queued.
package poller

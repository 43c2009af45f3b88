// Package outcome counts payloads that were discarded instead of delivered.
//
// The dispatcher reports one Outcome per dropped job, keyed by category and
// discard reason. Two recorders ship with the package:
//
//   - MemoryRecorder keeps counters in process, for tests and the CLI summary
//   - RedisRecorder increments hash counters in Redis so several processes
//     can share one view
//
// Tee fans one outcome out to several recorders.
//
// Responses with status 429 are not reported; the collector already counts
// those on its side.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package outcome

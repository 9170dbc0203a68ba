// Package engine streams the versions index through the inclusion policy
// and writes the filtered copy.
//
// The engine is a sequential fold over the input: header lines are copied
// through until the "---" separator, then each record line is parsed,
// checked against the policy, optionally version-stripped, and emitted.
// It holds no locks and keeps no state across runs, so independent runs may
// execute concurrently.
//
// # Modes
//
// ModeStream emits every admitted line immediately and keeps only the
// current line in memory. ModeDedup collapses repeated gems into a single
// record whose position comes from the first sighting and whose content
// comes from the last, then flushes in first-seen order at end of input.
// Dedup memory is proportional to the number of retained gems, never to
// input size.
//
// # Failure
//
// Malformed record lines and unreadable input are fatal; the run stops
// before the dedup flush so a failed run never produces a truncated
// artifact. Errors carry the line number and offending content and are
// matchable against the Err* sentinels with errors.Is.
package engine

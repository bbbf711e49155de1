// Package tasks orchestrates the playlist download pipeline stages with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] implements one method per pipeline stage:
//
//  1. [Engine.Search] : resolve a source URL per playlist export row
//  2. [Engine.Download] : fetch audio for every record with a URL
//  3. [Engine.Retry] : re-attempt entries from a failure list
//  4. [Engine.ReconcileDurations] : overwrite stored durations with measured ones
//  5. [Engine.Migrate] : consolidate files into the shared song library
//  6. [Engine.Export] : publish per-playlist manifests to the backend directory
//  7. [Engine.FetchThumbnails] : download video thumbnails per record
//
// Stages are deliberately serial: one external call in flight at a time,
// paced by a [rate.Limiter] between calls to respect upstream rate limits.
// Resumability substitutes for cancellation: every stage flushes the
// manifest after each durable mutation, so an interrupted run is recovered
// by re-running the same command.
//
// # Failure Semantics
//
// Per-record failures (no match, download error, unreadable audio) are
// counted or routed to the failure list and never abort a batch. Storage
// errors on the bookkeeping files themselves are fatal and returned.
//
// # Progress Reporting
//
// All operations accept a non-blocking progress channel. The
// [ProgressUpdate] struct contains phase, step counters and a
// display message; sends use select with default so reporting never blocks
// execution.
package tasks

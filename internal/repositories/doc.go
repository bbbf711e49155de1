// Package repositories implements SQLite persistence for the search cache.
//
// The cache stores resolved source URLs keyed by normalized (track, artist)
// identity so re-runs and retries skip the external search entirely. Cache
// errors are never fatal to a stage: a failed lookup falls through to a
// live search, and a failed store is logged and ignored.
package repositories

// Package ratelimit tracks server-imposed send suppression per category.
//
// The collector answers with either a structured x-sentry-rate-limits header
// or a plain retry-after header. [Tracker.Apply] folds them into an in-memory
// table of absolute expiry times; [Tracker.IsLimited] answers whether a
// category may be sent right now, falling back to the "all" wildcard when the
// category has no entry of its own.
//
// The newest observed value for a category always replaces the stored one,
// even when it expires earlier. State is never persisted.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package ratelimit

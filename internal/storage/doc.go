// Package storage persists the audit trail of job outcomes.
//
// Drivers:
//   - "file": JSON Lines appended to <path-without-ext>.audit.jsonl
//   - "sqlite": a SQLite database (modernc.org/sqlite, no cgo)
//
// An empty driver or "none" disables storage.
package storage

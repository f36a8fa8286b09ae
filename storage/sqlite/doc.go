// Package sqlite stores the embedding cache in a SQLite database through
// the cgo-free modernc.org/sqlite driver.
//
// Only the entry for the most recent source is kept. Writes happen inside a
// transaction, so readers see either the previous entry or the new one.
package sqlite

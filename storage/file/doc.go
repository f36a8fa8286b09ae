// Package file stores the embedding cache as a single file on local disk.
//
// The entry is replaced atomically: a temp file is written next to the
// cache, synced, and renamed over it while an exclusive lock file is held.
// Readers take a shared lock, so a concurrent reader never observes a
// partially written cache.
package file

package badger

import (
	"github.com/poiesic/skillmatch/core"
)

// Key prefixes for different data types
const (
	entryPrefix  = "entry:"
	vectorPrefix = "vec:"
)

// makeEntryKey generates the manifest key for a source hash.
func makeEntryKey(sourceHash string) []byte {
	return []byte(entryPrefix + sourceHash)
}

// makeVectorKey generates a content-addressed key for one skill vector.
// Format: prefix:hash(model NUL skill)
func makeVectorKey(model, skill string) []byte {
	return []byte(vectorPrefix + core.ContentHash([]byte(model+"\x00"+skill)))
}

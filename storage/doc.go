// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storage defines persistence for embedding cache entries.
//
// A VectorStore keeps one EmbeddingCacheEntry per source content hash.
// Two backends are provided:
//
//	store, err := file.NewStore("/var/cache/skillmatch")  // single file, atomic replace
//	store, err := badger.NewStore("/var/lib/skillmatch")  // content-addressed, shareable
//
// Use the in-memory Badger store in tests:
//
//	store, err := badger.NewMemoryStore()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// Stores that address vectors by skill content also implement VectorLookup,
// which lets a cache rebuilt after a source change reuse vectors for skills
// that did not change.
//
// Entries are encoded with mus-go primitives; see MarshalEntry.
//
// # Thread Safety
//
// All store implementations must be safe for concurrent use. The file store
// additionally serializes writers across processes with a lock file.
package storage

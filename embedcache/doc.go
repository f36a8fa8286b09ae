// Package embedcache computes and caches one embedding per vocabulary skill.
//
// Vectors are keyed by the BLAKE2b hash of the source file, so an unchanged
// catalog is served from the store without any backend calls. Missing
// vectors are embedded in batches on an ants worker pool with exponential
// backoff, normalized, and persisted through a storage.VectorStore. Query
// embeddings are always live.
//
// A Cache implements ai.SimilarityFinder and is the embedding source for
// both the semantic resolver and the ranking engine.
package embedcache

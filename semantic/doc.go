// Package semantic resolves free-text skill queries to canonical skills.
//
// A Resolver runs four tiers in order. The alias tier maps known surface
// forms ("GenAI", "Structured Query Language") to canonical skill ids. The
// taxonomy tier reads disambiguation signals from the query context and
// contributes intent keys and preferred skills as query expansions. The fuzzy
// tier scores query words against the skill vocabulary with Jaro-Winkler
// similarity, skipping stop words and short tokens, and only promotes a skill when nothing else resolved. The
// optional embedding tier asks an ai.SimilarityFinder for the nearest
// vocabulary skills under the same promotion rule.
//
// Alias and taxonomy tables are embedded YAML and can be replaced with
// LoadAliases and LoadTaxonomy.
package semantic

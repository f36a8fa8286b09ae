// Package intent detects learner transitions in free-text queries.
//
// An ordered table of phrase rules ("from X to Y", "become Y", "already
// know X", ...) splits a query into target terms and source terms; the
// first rule that captures a side supplies it. Independently, known job
// titles are looked up in a role dictionary and classified as target or
// source by the words around them. A recognized target role turns the
// query into a role-based search over that role's skills.
//
// The role dictionary and stop-word lists are loaded once from an embedded
// YAML file and never modified.
package intent

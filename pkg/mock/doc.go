// Package mock builds mock exemplars from captured transactions.
//
// Every captured transaction becomes an Exemplar: a compiled request pattern
// (the top-level fields of the recorded JSON request body), the set of
// request header names that must be present, and the recorded response.
// Exemplars are grouped per target authority into an ExemplarSet, each set
// assigned its own listening port. Within a set exemplars keep capture order
// and the first one matching a live request wins; there is no scoring.
//
// When an exemplar is selected, Render substitutes every recorded field
// value that differs in the live request into the serialized response body.
// Substitution is literal and global, so a recorded value that also occurs in
// unrelated response text is replaced there too.
package mock

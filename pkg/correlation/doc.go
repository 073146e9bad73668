// Package correlation discovers values that one transaction's response
// introduces and later transactions send back.
//
// Analysis runs in three steps. Scan extracts key=value tokens and their
// surrounding text from every section of one transaction. Analyze fans the
// scans out over a bounded worker pool and merges the records into an
// Aggregator. BuildRules then turns qualifying aggregates into extraction
// rules, each naming a target transaction, the part of the response to search
// and the literal boundaries around the value.
//
// A value is a candidate when it appears in more than one transaction but not
// in all of them, and when the first location merged for it belongs to a
// transaction whose response status was not 200.
package correlation

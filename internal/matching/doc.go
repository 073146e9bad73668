// Package matching provides the request matching heuristics used by the mock
// listeners.
//
// Recorded request fields are compiled once into a FieldMatcher, one of a
// closed set of variants:
//
//   - KindDigitCount: the recorded value is an integer. An integer actual value
//     matches when it has the same number of decimal digits, so IDs of the same
//     magnitude are treated as equivalent.
//   - KindTimestamp: the recorded value is a string starting with an ISO-8601
//     date-time (YYYY-MM-DDThh:mm:ss). Any string with that prefix matches.
//   - KindExact: everything else requires equality.
//
// A Pattern is a set of compiled field matchers and is a subset constraint:
// fields present only in the actual request are ignored. Header matching is a
// separate case-insensitive subset test over header names; values are never
// compared.
package matching

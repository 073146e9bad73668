// Package capture decodes recorded HTTP traffic into transactions.
//
// A capture is an HTTP Archive (HAR) document. Each entry becomes a
// Transaction holding the request and response exactly as recorded, with a
// 1-based index reflecting capture order. Transactions are immutable once
// decoded and are shared read-only by the mock exemplar index and the
// correlation analyzer.
//
// Decoding is lenient: a document whose top level is not valid JSON yields a
// *ParseError and zero transactions, while individual malformed entries are
// skipped and counted in Result.Skipped.
package capture

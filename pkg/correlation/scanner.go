package correlation

import (
	"regexp"

	"github.com/getmockd/harmock/pkg/capture"
)

// tokenPattern matches key=value pairs. Keys are word characters; values
// may also contain @ : % . + and -.
var tokenPattern = regexp.MustCompile(`(\b\w+\b)=([\w@:%.+\-]+)`)

// Record is one key=value token found in a transaction.
type Record struct {
	KeyValue    string   `json:"keyValue"`
	Section     Section  `json:"section"`
	Transaction int      `json:"transaction"`
	Boundary    Boundary `json:"boundary"`

	// Ordinal is the record's position in its transaction's scan.
	Ordinal int `json:"-"`
}

// ScanOptions controls which sections are scanned.
type ScanOptions struct {
	IncludeResponseBody bool
}

// significant filters out short tokens such as "a=1" or "id=x".
func significant(key, value string) bool {
	return len(key) > 5 || len(value) > 1
}

// Scan extracts the key=value tokens of one transaction in section order:
// URL, request headers, request body, response headers and, when enabled,
// response body. A token is recorded once per transaction even if it repeats.
func Scan(tx *capture.Transaction, opts ScanOptions) []Record {
	s := scanner{tx: tx.Index, seen: make(map[string]struct{})}

	s.scan(tx.Request.URL, SectionURL)
	for _, h := range tx.Request.Headers {
		s.scan(h.Value, SectionRequestHeader)
	}
	if tx.Request.HasBody {
		s.scan(tx.Request.Body, SectionRequestBody)
	}
	for _, h := range tx.Response.Headers {
		s.scan(h.Value, SectionResponseHeader)
	}
	if opts.IncludeResponseBody && tx.Response.HasBody {
		s.scan(tx.Response.Body, SectionResponseBody)
	}
	return s.records
}

type scanner struct {
	tx      int
	seen    map[string]struct{}
	records []Record
}

func (s *scanner) scan(text string, section Section) {
	if text == "" {
		return
	}
	for _, m := range tokenPattern.FindAllStringSubmatch(text, -1) {
		key, value := m[1], m[2]
		if !significant(key, value) {
			continue
		}
		kv := key + "=" + value
		if _, dup := s.seen[kv]; dup {
			continue
		}
		s.seen[kv] = struct{}{}

		s.records = append(s.records, Record{
			KeyValue:    kv,
			Section:     section,
			Transaction: s.tx,
			Boundary:    CaptureBoundary(text, kv),
			Ordinal:     len(s.records),
		})
	}
}

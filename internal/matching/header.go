package matching

import (
	"net/http"
	"strings"
)

// HeaderSet is a set of lower-cased header names.
type HeaderSet map[string]struct{}

// NewHeaderSet builds a HeaderSet from names, folding case.
func NewHeaderSet(names ...string) HeaderSet {
	s := make(HeaderSet, len(names))
	for _, n := range names {
		s[strings.ToLower(n)] = struct{}{}
	}
	return s
}

// HeaderSetOf returns the names present in h.
func HeaderSetOf(h http.Header) HeaderSet {
	s := make(HeaderSet, len(h))
	for name := range h {
		s[strings.ToLower(name)] = struct{}{}
	}
	return s
}

// Has reports whether name is in the set, compared case-insensitively.
func (s HeaderSet) Has(name string) bool {
	_, ok := s[strings.ToLower(name)]
	return ok
}

// SubsetOf reports whether every name in s is also in actual.
func (s HeaderSet) SubsetOf(actual HeaderSet) bool {
	for name := range s {
		if _, ok := actual[name]; !ok {
			return false
		}
	}
	return true
}

// MatchHeaders checks that every required header name is present in the
// actual headers. Values are not compared.
func MatchHeaders(required HeaderSet, actual http.Header) bool {
	return required.SubsetOf(HeaderSetOf(actual))
}

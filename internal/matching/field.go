package matching

import (
	"regexp"
	"strconv"
)

// Kind identifies which heuristic a FieldMatcher applies.
type Kind int

const (
	// KindExact requires the actual value to equal the recorded one.
	KindExact Kind = iota
	// KindDigitCount compares integers by decimal digit count.
	KindDigitCount
	// KindTimestamp accepts any string carrying an ISO-8601 date-time prefix.
	KindTimestamp
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindDigitCount:
		return "digit-count"
	case KindTimestamp:
		return "timestamp"
	default:
		return "exact"
	}
}

// timestampPrefix is anchored at the start only; trailing fractions and zones
// are allowed.
var timestampPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)

// IsTimestamp reports whether s starts with an ISO-8601 date-time.
func IsTimestamp(s string) bool {
	return timestampPrefix.MatchString(s)
}

// FieldMatcher is a compiled matcher for one recorded field value.
type FieldMatcher struct {
	Kind     Kind
	Expected any
}

// Compile selects the matcher variant for a recorded value.
func Compile(expected any) FieldMatcher {
	if _, ok := AsInteger(expected); ok {
		return FieldMatcher{Kind: KindDigitCount, Expected: expected}
	}
	if s, ok := expected.(string); ok && IsTimestamp(s) {
		return FieldMatcher{Kind: KindTimestamp, Expected: expected}
	}
	return FieldMatcher{Kind: KindExact, Expected: expected}
}

// Match reports whether actual satisfies the matcher.
func (m FieldMatcher) Match(actual any) bool {
	switch m.Kind {
	case KindDigitCount:
		want, _ := AsInteger(m.Expected)
		if got, ok := AsInteger(actual); ok {
			return digitCount(want) == digitCount(got)
		}
		// A non-integer actual value can still be numerically equal (1234.0).
		return Equal(m.Expected, actual)
	case KindTimestamp:
		s, ok := actual.(string)
		return ok && IsTimestamp(s)
	default:
		return Equal(m.Expected, actual)
	}
}

// Matches compiles expected and tests actual against it in one step.
func Matches(expected, actual any) bool {
	return Compile(expected).Match(actual)
}

// Pattern is a compiled set of field matchers keyed by field name.
type Pattern map[string]FieldMatcher

// CompilePattern compiles every field of a recorded request.
func CompilePattern(fields map[string]any) Pattern {
	p := make(Pattern, len(fields))
	for k, v := range fields {
		p[k] = Compile(v)
	}
	return p
}

// Matches reports whether every field of the pattern is satisfied by actual.
// A field missing from actual is treated as nil.
func (p Pattern) Matches(actual map[string]any) bool {
	for name, m := range p {
		if !m.Match(actual[name]) {
			return false
		}
	}
	return true
}

func digitCount(n int64) int {
	return len(strconv.FormatInt(n, 10))
}

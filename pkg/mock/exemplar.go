package mock

import (
	"sort"
	"strings"

	"github.com/ohler55/ojg/oj"

	"github.com/getmockd/harmock/internal/matching"
	"github.com/getmockd/harmock/pkg/capture"
)

// DefaultMimeType is assumed when a recorded response declares none.
const DefaultMimeType = "application/json"

// Response is the recorded response an exemplar replays.
type Response struct {
	Status   int    `json:"status"`
	MimeType string `json:"mimeType"`

	// Structured is set when the body was declared JSON and decoded cleanly;
	// Data then holds the decoded value. Text is always the body served, kept
	// as recorded so key order and number literals survive replay.
	Structured bool   `json:"structured"`
	Data       any    `json:"data,omitempty"`
	Text       string `json:"text"`
}

// Exemplar is a recorded request/response pair used as a template.
type Exemplar struct {
	// Transaction is the 1-based index of the source transaction.
	Transaction int    `json:"transaction"`
	Method      string `json:"method"`
	URL         string `json:"url"`

	// Fields are the recorded request fields; RequestPattern is their
	// compiled form.
	Fields         map[string]any     `json:"fields"`
	RequestPattern matching.Pattern   `json:"-"`
	HeadersPattern matching.HeaderSet `json:"-"`

	Response Response `json:"response"`
}

// Substitution replaces one recorded value with the value seen live.
type Substitution struct {
	Field string
	Old   string
	New   string
}

// NewExemplar derives an exemplar from a captured transaction.
func NewExemplar(tx *capture.Transaction) *Exemplar {
	fields := DecodeFields(tx.Request.Body)

	headers := make(matching.HeaderSet, len(tx.Request.Headers))
	for _, h := range tx.Request.Headers {
		// HTTP/2 pseudo headers (":authority", ":path") never reach a handler.
		if h.Name == "" || strings.HasPrefix(h.Name, ":") {
			continue
		}
		headers[strings.ToLower(h.Name)] = struct{}{}
	}

	return &Exemplar{
		Transaction:    tx.Index,
		Method:         tx.Request.Method,
		URL:            tx.Request.URL,
		Fields:         fields,
		RequestPattern: matching.CompilePattern(fields),
		HeadersPattern: headers,
		Response:       decodeResponse(&tx.Response),
	}
}

// DecodeFields decodes a JSON object body into its top-level fields. Empty,
// malformed or non-object bodies yield an empty map. Integers stay integers.
func DecodeFields(body string) map[string]any {
	body = strings.TrimSpace(body)
	if body == "" {
		return map[string]any{}
	}
	v, err := oj.ParseString(body)
	if err != nil {
		return map[string]any{}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return obj
}

func decodeResponse(r *capture.Response) Response {
	mime := r.MimeType
	if mime == "" {
		mime = DefaultMimeType
	}
	out := Response{Status: r.Status, MimeType: mime}

	body := strings.TrimSpace(r.Body)
	out.Text = body
	if !strings.HasPrefix(mime, "application/json") {
		return out
	}
	if body == "" {
		out.Structured = true
		out.Data = map[string]any{}
		out.Text = "{}"
		return out
	}
	v, err := oj.ParseString(body)
	if err != nil {
		// Declared JSON but not parseable: served as opaque text.
		return out
	}
	out.Structured = true
	out.Data = v
	return out
}

// Matches reports whether the live request fields and header names satisfy
// the exemplar's patterns.
func (e *Exemplar) Matches(fields map[string]any, headers matching.HeaderSet) bool {
	return e.RequestPattern.Matches(fields) && e.HeadersPattern.SubsetOf(headers)
}

// Differences lists recorded field values that the live request replaces.
// A field contributes when the live value is non-empty and its string form
// differs from the recorded one. The result is ordered by field name.
func (e *Exemplar) Differences(fields map[string]any) []Substitution {
	var subs []Substitution
	for name, recorded := range e.Fields {
		actual, ok := fields[name]
		if !ok || matching.IsEmpty(actual) {
			continue
		}
		oldVal, newVal := matching.Stringify(recorded), matching.Stringify(actual)
		if oldVal == newVal || oldVal == "" {
			continue
		}
		subs = append(subs, Substitution{Field: name, Old: oldVal, New: newVal})
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Field < subs[j].Field })
	return subs
}

// Render applies the substitutions derived from the live request fields to
// the recorded response body. It returns the body and mime type.
func (e *Exemplar) Render(fields map[string]any) ([]byte, string) {
	text := e.Response.Text
	for _, s := range e.Differences(fields) {
		text = strings.ReplaceAll(text, s.Old, s.New)
	}
	return []byte(text), e.Response.MimeType
}

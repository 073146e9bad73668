package capture

import (
	"net/url"
	"strings"
)

// Header is a single recorded header. Order and duplicates are preserved.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Request is the recorded request half of a transaction.
type Request struct {
	URL     string   `json:"url"`
	Method  string   `json:"method"`
	Headers []Header `json:"headers"`
	Body    string   `json:"body,omitempty"`
	HasBody bool     `json:"hasBody"`
}

// Response is the recorded response half of a transaction.
type Response struct {
	Status   int      `json:"status"`
	Headers  []Header `json:"headers"`
	Body     string   `json:"body,omitempty"`
	MimeType string   `json:"mimeType"`
	HasBody  bool     `json:"hasBody"`
}

// Transaction is one captured request/response exchange.
type Transaction struct {
	// Index is the 1-based position of the transaction in capture order.
	Index    int      `json:"index"`
	Request  Request  `json:"request"`
	Response Response `json:"response"`
}

// Authority returns the host[:port] of the request URL. It is the key used to
// group transactions into mock endpoints. An unparseable URL yields "".
func (t *Transaction) Authority() string {
	u, err := url.Parse(t.Request.URL)
	if err != nil {
		return ""
	}
	return u.Host
}

// RequestHeader returns the first request header value with the given name,
// compared case-insensitively.
func (t *Transaction) RequestHeader(name string) (string, bool) {
	for _, h := range t.Request.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// Statuses maps transaction index to recorded response status.
func Statuses(txs []Transaction) map[int]int {
	out := make(map[int]int, len(txs))
	for i := range txs {
		out[txs[i].Index] = txs[i].Response.Status
	}
	return out
}

func fromEntry(e *HAREntry, index int) Transaction {
	tx := Transaction{
		Index: index,
		Request: Request{
			URL:     e.Request.URL,
			Method:  e.Request.Method,
			Headers: convertHeaders(e.Request.Headers),
		},
		Response: Response{
			Status:   e.Response.Status,
			Headers:  convertHeaders(e.Response.Headers),
			MimeType: e.Response.Content.MimeType,
		},
	}
	if e.Request.PostData != nil {
		tx.Request.HasBody = true
		tx.Request.Body = e.Request.PostData.Text
	}
	if e.Response.Content.Text != nil {
		tx.Response.HasBody = true
		tx.Response.Body = *e.Response.Content.Text
	}
	return tx
}

func convertHeaders(in []HARHeader) []Header {
	out := make([]Header, 0, len(in))
	for _, h := range in {
		out = append(out, Header(h))
	}
	return out
}

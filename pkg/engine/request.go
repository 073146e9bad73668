package engine

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/ohler55/ojg/oj"

	"github.com/getmockd/harmock/internal/matching"
)

// MaxRequestBodySize caps the request body read for matching (10MB).
const MaxRequestBodySize = 10 << 20

// AllowedMethods are the verbs the mock listeners answer.
var AllowedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodPatch,
	http.MethodOptions,
}

var allowHeader = strings.Join(AllowedMethods, ", ")

func methodAllowed(method string) bool {
	for _, m := range AllowedMethods {
		if m == method {
			return true
		}
	}
	return false
}

// hasBodyFields reports whether the method carries its fields in the body.
func hasBodyFields(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// errInvalidBody marks a request body that claims JSON but is neither an
// object nor an empty value.
var errInvalidBody = errors.New("invalid JSON request body")

// actualFields extracts the live request fields: a JSON object body or the
// form values for body-carrying methods, the query parameters otherwise.
// Form and query values keep only the first value of each name.
func actualFields(r *http.Request) (map[string]any, error) {
	if !hasBodyFields(r.Method) {
		return firstValues(r.URL.Query()), nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return jsonFields(r)
	case mediaType == "multipart/form-data":
		if err := r.ParseMultipartForm(MaxRequestBodySize); err != nil {
			return nil, fmt.Errorf("failed to parse multipart form: %w", err)
		}
		return firstValues(r.MultipartForm.Value), nil
	default:
		r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("failed to parse form: %w", err)
		}
		return firstValues(r.PostForm), nil
	}
}

func jsonFields(r *http.Request) (map[string]any, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(data) > MaxRequestBodySize {
		return nil, fmt.Errorf("request body exceeds %d bytes", MaxRequestBodySize)
	}
	if strings.TrimSpace(string(data)) == "" {
		return map[string]any{}, nil
	}

	v, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	// null, [], false, 0 and "" carry no fields.
	if matching.IsEmpty(v) {
		return map[string]any{}, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an object, got %T", errInvalidBody, v)
	}
	return obj, nil
}

func firstValues(values map[string][]string) map[string]any {
	out := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

// requestHeaders returns the names of the headers the client sent. net/http
// lifts Host and Transfer-Encoding out of the header map, so they are added
// back here.
func requestHeaders(r *http.Request) matching.HeaderSet {
	names := matching.HeaderSetOf(r.Header)
	if r.Host != "" {
		names["host"] = struct{}{}
	}
	if len(r.TransferEncoding) > 0 {
		names["transfer-encoding"] = struct{}{}
	}
	return names
}

package capture

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHAR = `{
  "log": {
    "version": "1.2",
    "entries": [
      {
        "request": {
          "method": "POST",
          "url": "https://api.example.com:8443/orders?lang=en",
          "headers": [{"name": "Content-Type", "value": "application/json"}],
          "postData": {"mimeType": "application/json", "text": "{\"order_id\": 1234}"}
        },
        "response": {
          "status": 201,
          "headers": [{"name": "Location", "value": "/orders/1234"}],
          "content": {"mimeType": "application/json", "text": "{\"ok\": true}"}
        }
      },
      {
        "request": {"method": "GET", "url": "https://cdn.example.com/app.js"},
        "response": {"status": 200, "content": {"mimeType": "text/javascript"}}
      }
    ]
  }
}`

func TestParse(t *testing.T) {
	t.Parallel()

	res, err := Parse([]byte(sampleHAR))
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)
	assert.Zero(t, res.Skipped)

	first := res.Transactions[0]
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, "POST", first.Request.Method)
	assert.True(t, first.Request.HasBody)
	assert.Equal(t, `{"order_id": 1234}`, first.Request.Body)
	assert.Equal(t, 201, first.Response.Status)
	assert.True(t, first.Response.HasBody)
	assert.Equal(t, "api.example.com:8443", first.Authority())

	ct, ok := first.RequestHeader("content-type")
	assert.True(t, ok)
	assert.Equal(t, "application/json", ct)

	second := res.Transactions[1]
	assert.Equal(t, 2, second.Index)
	assert.False(t, second.Request.HasBody)
	assert.False(t, second.Response.HasBody, "absent content.text is not an empty body")
	assert.Empty(t, second.Request.Headers)
	assert.Equal(t, "cdn.example.com", second.Authority())
}

func TestParse_MalformedDocument(t *testing.T) {
	t.Parallel()

	res, err := Parse([]byte(`{"log": [`))
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Zero(t, perr.Entry)
	require.NotNil(t, res)
	assert.Empty(t, res.Transactions)
}

func TestParse_SkipsMalformedEntries(t *testing.T) {
	t.Parallel()

	doc := `{"log": {"entries": [
		{"request": {"method": "GET", "url": "http://a.test/1"}, "response": {"status": 200}},
		{"request": {"method": "GET", "url": "http://a.test/2"}, "response": {"status": "oops"}},
		{"request": {"method": "GET"}, "response": {"status": 200}},
		{"request": {"method": "GET", "url": "http://a.test/3"}, "response": {"status": 404}}
	]}}`

	res, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Skipped)
	assert.Len(t, res.Warnings, 2)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, 1, res.Transactions[0].Index)
	assert.Equal(t, 2, res.Transactions[1].Index, "indexes stay dense after skipped entries")
	assert.Equal(t, "http://a.test/3", res.Transactions[1].Request.URL)
}

func TestParse_BareEntries(t *testing.T) {
	t.Parallel()

	res, err := Parse([]byte(`{"entries": [{"request": {"method": "GET", "url": "http://a.test/"}, "response": {"status": 200}}]}`))
	require.NoError(t, err)
	assert.Len(t, res.Transactions, 1)
}

func TestLoadGlob(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.har"), []byte(sampleHAR), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.har"), []byte(sampleHAR), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "broken.har"), []byte("not json"), 0o600))

	res, err := LoadGlob(filepath.Join(dir, "**", "*.har"))
	require.NoError(t, err)
	require.Len(t, res.Transactions, 4)
	for i, tx := range res.Transactions {
		assert.Equal(t, i+1, tx.Index)
	}
	assert.Len(t, res.Warnings, 1, "broken document is reported, not fatal")
}

func TestLoadGlob_NoMatches(t *testing.T) {
	t.Parallel()

	_, err := LoadGlob(filepath.Join(t.TempDir(), "*.har"))
	assert.ErrorIs(t, err, ErrNoCaptureFiles)
}

func TestStatuses(t *testing.T) {
	t.Parallel()

	res, err := Parse([]byte(sampleHAR))
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 201, 2: 200}, Statuses(res.Transactions))
}

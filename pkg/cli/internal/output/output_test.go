package output

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, map[string]string{"left": "<a href="}))
	assert.Equal(t, "{\n  \"left\": \"<a href=\"\n}\n", buf.String())
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	tw := Table(&buf)
	fmt.Fprintln(tw, "AUTHORITY\tPORT")
	fmt.Fprintln(tw, "api.example.test\t5000")
	require.NoError(t, tw.Flush())
	assert.Equal(t, "AUTHORITY         PORT\napi.example.test  5000\n", buf.String())
}

func TestWarn(t *testing.T) {
	var buf bytes.Buffer
	Warn(&buf, "skipped %d entries", 2)
	assert.Equal(t, "Warning: skipped 2 entries\n", buf.String())
}

package correlation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qualified(kv string, src Record, status int, locations ...Record) *Aggregate {
	return &Aggregate{
		KeyValue:        kv,
		Count:           len(locations),
		Locations:       locations,
		FirstQualifying: &Qualifying{Record: src, Status: status},
	}
}

func TestRule_Directive(t *testing.T) {
	r := Rule{Transaction: 12, Target: "response.headers", Left: "fn(", Right: ") x"}
	assert.Equal(t, `Transaction_12,response.headers,fn\(delimiter) x`, r.Directive())
}

func TestRule_Extract(t *testing.T) {
	r := Rule{Left: "token;", Right: "; Path"}
	got, ok := r.Extract("x token; sessionId=NEW999; Path=/ token; sessionId=OTHER; Path=/")
	require.True(t, ok)
	assert.Equal(t, " sessionId=NEW999", got)
	assert.Equal(t, []string{" sessionId=NEW999", " sessionId=OTHER"},
		r.ExtractAll("x token; sessionId=NEW999; Path=/ token; sessionId=OTHER; Path=/"))

	_, ok = r.Extract("no boundaries here")
	assert.False(t, ok)
	_, ok = r.Extract("token; but no right side")
	assert.False(t, ok)
	assert.Empty(t, Rule{}.ExtractAll("anything"))
}

func TestRuleSet_ForTransactionIsExact(t *testing.T) {
	rs := RuleSet{
		{Transaction: 1, Target: "response.url", Left: "a", Right: "b"},
		{Transaction: 10, Target: "response.url", Left: "a", Right: "b"},
		{Transaction: 11, Target: "response.url", Left: "a", Right: "b"},
		{Transaction: 1, Target: "response.headers", Left: "c", Right: "d"},
	}

	got := rs.ForTransaction(1)
	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, 1, r.Transaction)
	}
	assert.Empty(t, rs.ForTransaction(2))
	assert.Len(t, rs.Directives(), 4)
}

func TestBuildRules(t *testing.T) {
	src := rec(2, "sid=AB12", SectionResponseHeader, "token;", "; Path=/;")

	t.Run("one rule per header or URL location", func(t *testing.T) {
		agg := qualified("sid=AB12", src, 500,
			src,
			rec(3, "sid=AB12", SectionURL, "ignored", "ignored"),
			rec(4, "sid=AB12", SectionRequestBody, "x", "y"),
			rec(5, "sid=AB12", SectionRequestHeader, "p", "q"),
		)

		rules := BuildRules([]*Aggregate{agg}, 10)
		assert.Equal(t, []string{
			"Transaction_2,response.headers,token;delimiter; Path=/;",
			"Transaction_3,response.url,token;delimiter; Path=/;",
			"Transaction_5,response.request.headers,token;delimiter; Path=/;",
		}, rules.Directives())
		for _, r := range rules {
			assert.Equal(t, 2, r.Source.Transaction)
			assert.Equal(t, "sid=AB12", r.KeyValue)
		}
	})

	t.Run("value in every transaction is excluded", func(t *testing.T) {
		agg := qualified("sid=AB12", src, 500, src, rec(3, "sid=AB12", SectionURL, "a", "b"))
		assert.Empty(t, BuildRules([]*Aggregate{agg}, 2))
		assert.Empty(t, Candidates([]*Aggregate{agg}, 2))
	})

	t.Run("single occurrence is excluded", func(t *testing.T) {
		agg := qualified("sid=AB12", src, 500, src)
		assert.Empty(t, BuildRules([]*Aggregate{agg}, 5))
	})

	t.Run("no qualifying location", func(t *testing.T) {
		agg := &Aggregate{KeyValue: "sid=AB12", Count: 2, Locations: []Record{src, src}}
		assert.Empty(t, BuildRules([]*Aggregate{agg}, 5))
	})

	t.Run("sentinel boundaries never emit rules", func(t *testing.T) {
		for _, b := range []Boundary{
			{Left: NoLeftBoundary, Right: "x"},
			{Left: "x", Right: NoRightBoundary},
		} {
			s := src
			s.Boundary = b
			agg := qualified("sid=AB12", s, 500, s, rec(3, "sid=AB12", SectionURL, "a", "b"))
			assert.Empty(t, BuildRules([]*Aggregate{agg}, 5))
			assert.Len(t, Candidates([]*Aggregate{agg}, 5), 1, "still reported as a candidate")
		}
	})
}

func TestCandidates(t *testing.T) {
	src := rec(2, "sid=AB12", SectionResponseHeader, "l", "r")
	aggs := []*Aggregate{
		{KeyValue: "lonely=value", Count: 1, Locations: []Record{src}},
		qualified("sid=AB12", src, 401, src, rec(4, "sid=AB12", SectionURL, "a", "b")),
	}

	got := Candidates(aggs, 5)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].No)
	assert.Equal(t, []int{2, 4}, got[0].Transactions)
	assert.Equal(t, 401, got[0].Source.Status)
}

package correlation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(tx int, kv string, section Section, left, right string) Record {
	return Record{KeyValue: kv, Section: section, Transaction: tx, Boundary: Boundary{Left: left, Right: right}}
}

func TestAggregator_Merge(t *testing.T) {
	agg := NewAggregator(map[int]int{1: 200, 2: 500, 3: 302})

	agg.Merge([]Record{rec(1, "sid=AB12", SectionURL, "l1", "r1")})
	a, ok := agg.Get("sid=AB12")
	require.True(t, ok)
	assert.Nil(t, a.FirstQualifying, "a 200 location never qualifies")

	agg.Merge([]Record{rec(3, "sid=AB12", SectionRequestHeader, "l3", "r3")})
	agg.Merge([]Record{rec(2, "sid=AB12", SectionResponseHeader, "l2", "r2")})

	assert.Equal(t, 3, a.Count)
	assert.Equal(t, []int{1, 3, 2}, a.Transactions(), "locations keep merge order")
	require.NotNil(t, a.FirstQualifying)
	assert.Equal(t, 3, a.FirstQualifying.Transaction, "the first merged non-200 location wins")
	assert.Equal(t, 302, a.FirstQualifying.Status)

	_, ok = agg.Get("missing=1")
	assert.False(t, ok)
	assert.Equal(t, 1, agg.Len())
}

func TestAggregator_Normalize(t *testing.T) {
	agg := NewAggregator(map[int]int{1: 200, 2: 500, 3: 302})
	agg.Merge([]Record{rec(3, "late=value", SectionURL, "l", "r"), rec(3, "sid=AB12", SectionURL, "l3", "r3")})
	agg.Merge([]Record{rec(2, "sid=AB12", SectionResponseHeader, "l2", "r2")})
	agg.Merge([]Record{{KeyValue: "sid=AB12", Transaction: 1, Ordinal: 0}, {KeyValue: "early=value", Transaction: 1, Ordinal: 1}})

	agg.Normalize()

	a, _ := agg.Get("sid=AB12")
	assert.Equal(t, []int{1, 2, 3}, a.Transactions())
	require.NotNil(t, a.FirstQualifying)
	assert.Equal(t, 2, a.FirstQualifying.Transaction, "lowest non-200 transaction wins")

	var order []string
	for _, x := range agg.Aggregates() {
		order = append(order, x.KeyValue)
	}
	assert.Equal(t, []string{"sid=AB12", "early=value", "late=value"}, order)
}

func TestAggregator_ConcurrentMerge(t *testing.T) {
	statuses := map[int]int{}
	for i := 1; i <= 64; i++ {
		statuses[i] = 500
	}
	agg := NewAggregator(statuses)

	var wg sync.WaitGroup
	for i := 1; i <= 64; i++ {
		wg.Add(1)
		go func(tx int) {
			defer wg.Done()
			agg.Merge([]Record{rec(tx, "shared=value", SectionURL, "a", "b")})
		}(i)
	}
	wg.Wait()

	a, ok := agg.Get("shared=value")
	require.True(t, ok)
	assert.Equal(t, 64, a.Count)
	assert.Len(t, a.Locations, 64)
	require.NotNil(t, a.FirstQualifying)
	assert.Equal(t, a.Locations[0].Transaction, a.FirstQualifying.Transaction)
}

package correlation

import (
	"net/http"
	"sort"
	"sync"
)

// Qualifying is the location that makes an aggregate a correlation candidate.
type Qualifying struct {
	Record
	Status int `json:"status"`
}

// Aggregate summarises every location of one key=value string.
type Aggregate struct {
	KeyValue string `json:"keyValue"`

	// Count is the number of transactions the value was found in.
	Count int `json:"count"`

	// Locations are in merge order unless the aggregator was normalised.
	Locations []Record `json:"locations"`

	// FirstQualifying is the first merged location whose transaction did not
	// answer 200. Nil when there is none.
	FirstQualifying *Qualifying `json:"firstQualifying,omitempty"`
}

// Transactions returns the transaction index of every location.
func (a *Aggregate) Transactions() []int {
	out := make([]int, len(a.Locations))
	for i, l := range a.Locations {
		out[i] = l.Transaction
	}
	return out
}

// Aggregator merges scan results. Merge is safe for concurrent use; the
// read methods must only be called once every merge has returned.
type Aggregator struct {
	statuses map[int]int

	mu    sync.Mutex
	byKey map[string]*Aggregate
	order []*Aggregate
}

// NewAggregator creates an Aggregator. statuses maps transaction index to
// response status and decides which locations qualify.
func NewAggregator(statuses map[int]int) *Aggregator {
	return &Aggregator{
		statuses: statuses,
		byKey:    make(map[string]*Aggregate),
	}
}

// Merge adds one transaction's records. Counting, appending and the
// first-qualifying check-and-set happen under a single lock per call.
func (a *Aggregator) Merge(records []Record) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, r := range records {
		agg, ok := a.byKey[r.KeyValue]
		if !ok {
			agg = &Aggregate{KeyValue: r.KeyValue}
			a.byKey[r.KeyValue] = agg
			a.order = append(a.order, agg)
		}
		agg.Count++
		agg.Locations = append(agg.Locations, r)

		if agg.FirstQualifying == nil {
			if status := a.statuses[r.Transaction]; status != http.StatusOK {
				agg.FirstQualifying = &Qualifying{Record: r, Status: status}
			}
		}
	}
}

// Normalize removes the dependence on merge order: locations are sorted by
// transaction and scan position, aggregates by their earliest location, and
// the qualifying location becomes the earliest non-200 one.
func (a *Aggregator) Normalize() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, agg := range a.order {
		sort.SliceStable(agg.Locations, func(i, j int) bool {
			return recordLess(agg.Locations[i], agg.Locations[j])
		})
		agg.FirstQualifying = nil
		for _, l := range agg.Locations {
			if status := a.statuses[l.Transaction]; status != http.StatusOK {
				agg.FirstQualifying = &Qualifying{Record: l, Status: status}
				break
			}
		}
	}
	sort.SliceStable(a.order, func(i, j int) bool {
		return recordLess(a.order[i].Locations[0], a.order[j].Locations[0])
	})
}

func recordLess(x, y Record) bool {
	if x.Transaction != y.Transaction {
		return x.Transaction < y.Transaction
	}
	return x.Ordinal < y.Ordinal
}

// Aggregates returns every aggregate in first-merge order.
func (a *Aggregator) Aggregates() []*Aggregate {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*Aggregate(nil), a.order...)
}

// Get returns the aggregate for a key=value string.
func (a *Aggregator) Get(kv string) (*Aggregate, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	agg, ok := a.byKey[kv]
	return agg, ok
}

// Len returns the number of distinct key=value strings.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.order)
}

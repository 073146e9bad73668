package mock

import (
	"github.com/getmockd/harmock/internal/matching"
	"github.com/getmockd/harmock/pkg/capture"
)

// DefaultBasePort is the first port handed out to an exemplar set.
const DefaultBasePort = 5000

// ExemplarSet holds the exemplars recorded against one target authority.
// It is built once and never mutated, so concurrent lookups need no locking.
type ExemplarSet struct {
	Authority string      `json:"authority"`
	Port      int         `json:"port"`
	Exemplars []*Exemplar `json:"exemplars"`
}

// Lookup returns the first exemplar, in capture order, whose patterns match
// the live request.
func (s *ExemplarSet) Lookup(fields map[string]any, headers matching.HeaderSet) (*Exemplar, bool) {
	for _, e := range s.Exemplars {
		if e.Matches(fields, headers) {
			return e, true
		}
	}
	return nil, false
}

// Len returns the number of exemplars in the set.
func (s *ExemplarSet) Len() int {
	return len(s.Exemplars)
}

// Index groups exemplar sets by authority.
type Index struct {
	// Sets are ordered by first appearance of their authority in the capture.
	Sets []*ExemplarSet

	byAuthority map[string]*ExemplarSet
}

// BuildIndex derives exemplars from txs and assigns each distinct authority
// a port, counting up from basePort in order of first appearance.
func BuildIndex(txs []capture.Transaction, basePort int) *Index {
	if basePort <= 0 {
		basePort = DefaultBasePort
	}
	idx := &Index{byAuthority: make(map[string]*ExemplarSet)}

	for i := range txs {
		tx := &txs[i]
		authority := tx.Authority()
		set, ok := idx.byAuthority[authority]
		if !ok {
			set = &ExemplarSet{Authority: authority, Port: basePort + len(idx.Sets)}
			idx.byAuthority[authority] = set
			idx.Sets = append(idx.Sets, set)
		}
		set.Exemplars = append(set.Exemplars, NewExemplar(tx))
	}
	return idx
}

// Set returns the exemplar set for authority.
func (i *Index) Set(authority string) (*ExemplarSet, bool) {
	s, ok := i.byAuthority[authority]
	return s, ok
}

// Ports returns the authority to port assignment.
func (i *Index) Ports() map[string]int {
	out := make(map[string]int, len(i.Sets))
	for _, s := range i.Sets {
		out[s.Authority] = s.Port
	}
	return out
}

// Count returns the total number of exemplars across all sets.
func (i *Index) Count() int {
	n := 0
	for _, s := range i.Sets {
		n += s.Len()
	}
	return n
}

package correlation

import (
	"sort"
	"strconv"
	"strings"
)

// Rule tells a script generator to capture a value from one transaction's
// response by locating the text between two boundaries.
type Rule struct {
	// Transaction is the 1-based index of the transaction the rule applies to.
	Transaction int     `json:"transaction"`
	Section     Section `json:"section"`
	Target      string  `json:"target"`
	Left        string  `json:"left"`
	Right       string  `json:"right"`

	// KeyValue and Source describe where the value was first seen.
	KeyValue string     `json:"keyValue"`
	Source   Qualifying `json:"source"`
}

// escapeBoundary escapes "(" so boundaries can sit in a regular expression
// literal downstream.
func escapeBoundary(s string) string {
	return strings.ReplaceAll(s, "(", `\(`)
}

// Directive renders the rule as "Transaction_<n>,<target>,<left>delimiter<right>".
func (r Rule) Directive() string {
	return "Transaction_" + strconv.Itoa(r.Transaction) + "," + r.Target + "," +
		escapeBoundary(r.Left) + "delimiter" + escapeBoundary(r.Right)
}

// Extract returns the shortest text enclosed by the rule's boundaries, the
// first match of the extractor pattern /left(.*?)right/.
func (r Rule) Extract(text string) (string, bool) {
	all := r.ExtractAll(text)
	if len(all) == 0 {
		return "", false
	}
	return all[0], true
}

// ExtractAll returns every non-overlapping match in order.
func (r Rule) ExtractAll(text string) []string {
	if r.Left == "" || r.Right == "" {
		return nil
	}
	var out []string
	for {
		i := strings.Index(text, r.Left)
		if i == -1 {
			return out
		}
		rest := text[i+len(r.Left):]
		j := strings.Index(rest, r.Right)
		if j == -1 {
			return out
		}
		out = append(out, rest[:j])
		text = rest[j+len(r.Right):]
	}
}

// RuleSet is an ordered list of rules.
type RuleSet []Rule

// ForTransaction returns the rules whose target is transaction n exactly.
func (rs RuleSet) ForTransaction(n int) []Rule {
	var out []Rule
	for _, r := range rs {
		if r.Transaction == n {
			out = append(out, r)
		}
	}
	return out
}

// Directives renders every rule in order.
func (rs RuleSet) Directives() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Directive()
	}
	return out
}

// qualifies reports whether an aggregate is a correlation candidate: seen in
// more than one transaction but not all, with a non-200 first location.
func qualifies(agg *Aggregate, total int) bool {
	return agg.Count > 1 && agg.Count != total && agg.FirstQualifying != nil
}

// BuildRules emits one rule per header or URL location of every qualifying
// aggregate whose source boundaries are complete. Every rule of an aggregate
// carries the source location's boundaries. Rules are sorted by directive.
func BuildRules(aggs []*Aggregate, total int) RuleSet {
	var rules RuleSet
	for _, agg := range aggs {
		if !qualifies(agg, total) || !agg.FirstQualifying.Boundary.Complete() {
			continue
		}
		src := *agg.FirstQualifying
		for _, loc := range agg.Locations {
			target, ok := loc.Section.Target()
			if !ok {
				continue
			}
			rules = append(rules, Rule{
				Transaction: loc.Transaction,
				Section:     loc.Section,
				Target:      target,
				Left:        src.Boundary.Left,
				Right:       src.Boundary.Right,
				KeyValue:    agg.KeyValue,
				Source:      src,
			})
		}
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Directive() < rules[j].Directive()
	})
	return rules
}

// Candidate is a qualifying aggregate summarised for reporting.
type Candidate struct {
	No           int        `json:"no"`
	KeyValue     string     `json:"keyValue"`
	Count        int        `json:"count"`
	Transactions []int      `json:"transactions"`
	Source       Qualifying `json:"source"`
}

// Candidates lists the qualifying aggregates in aggregate order, including
// those whose boundaries are incomplete and therefore produce no rule.
func Candidates(aggs []*Aggregate, total int) []Candidate {
	var out []Candidate
	for _, agg := range aggs {
		if !qualifies(agg, total) {
			continue
		}
		out = append(out, Candidate{
			No:           len(out) + 1,
			KeyValue:     agg.KeyValue,
			Count:        agg.Count,
			Transactions: agg.Transactions(),
			Source:       *agg.FirstQualifying,
		})
	}
	return out
}

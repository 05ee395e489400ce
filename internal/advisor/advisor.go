package advisor

import "strings"

// Answer is resolved advisory text plus zero or more source citations.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Rule pairs lowercase trigger keywords with a canned answer and its citation.
type Rule struct {
	Keywords []string
	Text     string
	Source   string
}

// Lookup outcome labels, used for metrics.
const (
	OutcomeResolved = "resolved"
	OutcomeFallback = "fallback"
)

// Resolver matches a free-text question against an ordered rule list.
//
// The scan is linear and first-match-wins: the first rule with any keyword
// contained in the normalized query answers it, so earlier rules strictly
// dominate later ones regardless of how specific a later match would be.
// Reordering the bank is therefore a behavior change, not a cosmetic one.
type Resolver struct {
	rules    []Rule
	fallback Answer
}

// New builds a resolver over rules in the given priority order.
// The rule set is copied and immutable afterwards.
func New(rules []Rule, fallback Answer) *Resolver {
	return &Resolver{
		rules:    append([]Rule(nil), rules...),
		fallback: fallback,
	}
}

// Default returns a resolver loaded with the built-in F-1/J-1 policy bank.
func Default() *Resolver {
	return New(bank, fallbackAnswer)
}

// Resolve maps a question to an answer. Total over all inputs: unmatched or
// empty queries get the fixed fallback. Callers that want to suppress empty
// submissions must do so before calling.
func (r *Resolver) Resolve(query string) Answer {
	ans, _ := r.Lookup(query)
	return ans
}

// Lookup is Resolve plus a report of whether a rule matched.
func (r *Resolver) Lookup(query string) (Answer, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return r.fallback, false
	}
	for _, rule := range r.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(q, kw) {
				ans := Answer{Text: rule.Text}
				if rule.Source != "" {
					ans.Sources = []string{rule.Source}
				}
				return ans, true
			}
		}
	}
	return r.fallback, false
}

// Rules returns the bank in evaluation order.
func (r *Resolver) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

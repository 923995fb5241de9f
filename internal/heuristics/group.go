package heuristics

// MaxContentBytes is the largest content prefix rules are evaluated against
const MaxContentBytes = 512 * 1024

// Rule identifies Languages when Predicate holds
type Rule struct {
	Predicate Predicate
	Languages []string
}

// Group is the ordered rule list for one extension
type Group struct {
	Extension string
	Rules     []Rule
	// Fallback is returned when no rule holds. Empty means no result.
	Fallback []string
}

// Match evaluates the rules in order and returns the index of the rule that
// held, or -1 when the fallback was used. ok is false when no rule held and
// the fallback is empty.
func (g *Group) Match(content string) (rule int, languages []string, ok bool) {
	if len(content) > MaxContentBytes {
		content = content[:MaxContentBytes]
	}

	for i, r := range g.Rules {
		if r.Predicate.Eval(content) {
			return i, clone(r.Languages), true
		}
	}

	if len(g.Fallback) == 0 {
		return -1, nil, false
	}
	return -1, clone(g.Fallback), true
}

// Evaluate returns the languages identified for content
func (g *Group) Evaluate(content string) ([]string, bool) {
	_, languages, ok := g.Match(content)
	return languages, ok
}

// Languages returns every language named by a rule or the fallback, in
// first-seen order
func (g *Group) Languages() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(names []string) {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	for _, r := range g.Rules {
		add(r.Languages)
	}
	add(g.Fallback)
	return out
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}

// Package rank holds the ranking heuristics of the pipeline: source trust
// tiers and outbound-link scores. Both are expressed as explicit rule lists
// so each rule can be tested on its own and the aggregate is a pure
// function of the list.
package rank

// Rule is one weighted condition over a value of type T.
type Rule[T any] struct {
	Name   string
	Weight int
	When   func(T) bool
}

// Rules is an ordered list of weighted rules.
type Rules[T any] []Rule[T]

// Score sums the weights of every rule whose condition holds.
func (rs Rules[T]) Score(v T) int {
	total := 0
	for _, r := range rs {
		if r.When(v) {
			total += r.Weight
		}
	}
	return total
}

// Fired returns the names of the rules whose condition holds, in order.
func (rs Rules[T]) Fired(v T) []string {
	var names []string
	for _, r := range rs {
		if r.When(v) {
			names = append(names, r.Name)
		}
	}
	return names
}

// Get returns the rule with the given name.
func (rs Rules[T]) Get(name string) (Rule[T], bool) {
	for _, r := range rs {
		if r.Name == name {
			return r, true
		}
	}
	return Rule[T]{}, false
}

package rank

import (
	"strings"

	"govjobs/harvester-service/internal/keywords"
	"govjobs/harvester-service/internal/model"
)

// Trust tiers, lower is more authoritative.
const (
	TierCentral  = 0
	TierStatePSC = 1
	TierStateGov = 2
	TierUnknown  = 3
)

// TierRule assigns Tier to a result when When holds.
type TierRule struct {
	Name string
	Tier int
	When func(model.SearchResult) bool
}

// Tiering classifies search results into trust tiers. Rules are checked in
// order and the first match wins; results matching none get TierUnknown.
type Tiering struct {
	Rules []TierRule
}

// TierVocab is the tunable vocabulary the default tier rules use.
type TierVocab struct {
	Central    *keywords.Set // topics strongly associated with central recruitment
	Regional   *keywords.Set // state commission names
	StateCodes []string      // state labels in *.<code>.gov.in / *.<code>.nic.in
}

// NewTiering returns the default rule set.
func NewTiering(d *Domains, v TierVocab) *Tiering {
	codes := make(map[string]bool, len(v.StateCodes))
	for _, c := range v.StateCodes {
		codes[strings.ToLower(c)] = true
	}

	text := func(r model.SearchResult) string { return r.Title + " " + r.Snippet }

	return &Tiering{Rules: []TierRule{
		{Name: "central-domain", Tier: TierCentral, When: func(r model.SearchResult) bool {
			return d.Central(Host(r.Link))
		}},
		{Name: "central-topic", Tier: TierCentral, When: func(r model.SearchResult) bool {
			return v.Central.Contains(text(r))
		}},
		{Name: "state-psc", Tier: TierStatePSC, When: func(r model.SearchResult) bool {
			return strings.Contains(Host(r.Link), "psc") || v.Regional.Contains(text(r))
		}},
		{Name: "state-gov", Tier: TierStateGov, When: func(r model.SearchResult) bool {
			host := Host(r.Link)
			return stateLabel(host, codes) || d.Gov(host)
		}},
	}}
}

// Tier returns the trust tier of r.
func (t *Tiering) Tier(r model.SearchResult) int {
	tier, _ := t.Explain(r)
	return tier
}

// Explain returns the tier of r and the name of the rule that decided it.
func (t *Tiering) Explain(r model.SearchResult) (int, string) {
	for _, rule := range t.Rules {
		if rule.When(r) {
			return rule.Tier, rule.Name
		}
	}
	return TierUnknown, "default"
}

// stateLabel reports whether host looks like <x>.<state>.gov.in or
// <x>.<state>.nic.in for a known state code.
func stateLabel(host string, codes map[string]bool) bool {
	labels := strings.Split(host, ".")
	for i := 0; i+2 < len(labels); i++ {
		if labels[i+2] != "in" || (labels[i+1] != "gov" && labels[i+1] != "nic") {
			continue
		}
		if codes[labels[i]] {
			return true
		}
	}
	return false
}

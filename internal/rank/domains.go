package rank

import (
	"net/url"
	"strings"
)

// Domains holds the curated domain lists. A host matches an entry when it is
// the entry itself or any subdomain of it.
type Domains struct {
	allowed []string
	gov     []string
	central []string
}

// NewDomains builds the lists; entries are lowercased and stripped of a
// leading "www." or ".".
func NewDomains(allowed, govSuffixes, central []string) *Domains {
	return &Domains{
		allowed: cleanDomains(allowed),
		gov:     cleanDomains(govSuffixes),
		central: cleanDomains(central),
	}
}

// Allowed reports whether host is on the board allow-list.
func (d *Domains) Allowed(host string) bool { return matchAny(host, d.allowed) }

// Gov reports whether host is under a government suffix.
func (d *Domains) Gov(host string) bool { return matchAny(host, d.gov) }

// Central reports whether host belongs to a central/national authority.
func (d *Domains) Central(host string) bool { return matchAny(host, d.central) }

// Trusted reports whether host is either allow-listed or governmental.
func (d *Domains) Trusted(host string) bool { return d.Allowed(host) || d.Gov(host) }

// Host returns the lowercased hostname of rawURL without a "www." prefix,
// or "" when rawURL does not parse.
func Host(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func matchAny(host string, list []string) bool {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	if host == "" {
		return false
	}
	for _, d := range list {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func cleanDomains(in []string) []string {
	out := make([]string, 0, len(in))
	for _, d := range in {
		d = strings.ToLower(strings.TrimSpace(d))
		d = strings.TrimPrefix(strings.TrimPrefix(d, "www."), ".")
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

package rank

import (
	"net/url"
	"path"
	"strings"

	"govjobs/harvester-service/internal/keywords"
)

// LinkCandidate is an outbound link found on a page, as seen by the link rules.
type LinkCandidate struct {
	URL      *url.URL
	Label    string // anchor text
	PageHost string // host of the page the link was found on
}

// Text is the path plus anchor text, the surface keyword rules look at.
func (c LinkCandidate) Text() string {
	return c.URL.Path + " " + c.URL.RawQuery + " " + c.Label
}

// IsDocument reports whether the link points at a document format.
func (c LinkCandidate) IsDocument() bool {
	switch strings.ToLower(path.Ext(c.URL.Path)) {
	case ".pdf", ".doc", ".docx":
		return true
	}
	return false
}

// LinkRules returns the weighted rules used to rank outbound links.
func LinkRules(d *Domains) Rules[LinkCandidate] {
	return Rules[LinkCandidate]{
		{Name: "document", Weight: 50, When: LinkCandidate.IsDocument},
		{Name: "same-host", Weight: 15, When: func(c LinkCandidate) bool {
			return c.PageHost != "" && hostOf(c.URL) == strings.TrimPrefix(strings.ToLower(c.PageHost), "www.")
		}},
		{Name: "trusted-domain", Weight: 15, When: func(c LinkCandidate) bool {
			return d.Trusted(hostOf(c.URL))
		}},
		{Name: "notice-keywords", Weight: 20, When: func(c LinkCandidate) bool {
			return keywords.NoticeLink.Contains(c.Text())
		}},
		{Name: "apply-keywords", Weight: 10, When: func(c LinkCandidate) bool {
			return keywords.ApplyLink.Contains(c.Text())
		}},
		{Name: "noise", Weight: -30, When: func(c LinkCandidate) bool {
			return keywords.NoiseLink.Contains(c.URL.String() + " " + c.Label)
		}},
		{Name: "procurement", Weight: -40, When: func(c LinkCandidate) bool {
			return keywords.Procurement.Contains(c.Text())
		}},
	}
}

func hostOf(u *url.URL) string {
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

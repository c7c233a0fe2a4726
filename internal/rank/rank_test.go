package rank

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govjobs/harvester-service/internal/keywords"
	"govjobs/harvester-service/internal/model"
)

func testDomains() *Domains {
	return NewDomains(
		[]string{"www.freejobalert.com", "uppsc.up.nic.in"},
		[]string{"gov.in", ".nic.in"},
		[]string{"ssc.gov.in", "upsc.gov.in"},
	)
}

func TestRules_ScoreAndFired(t *testing.T) {
	rs := Rules[int]{
		{Name: "positive", Weight: 10, When: func(v int) bool { return v > 0 }},
		{Name: "even", Weight: 3, When: func(v int) bool { return v%2 == 0 }},
		{Name: "big", Weight: -5, When: func(v int) bool { return v > 100 }},
	}

	assert.Equal(t, 13, rs.Score(2))
	assert.Equal(t, 10, rs.Score(1))
	assert.Equal(t, 8, rs.Score(102))
	assert.Equal(t, []string{"positive", "even", "big"}, rs.Fired(102))
	assert.Nil(t, rs.Fired(-1))

	r, ok := rs.Get("even")
	require.True(t, ok)
	assert.Equal(t, 3, r.Weight)
	_, ok = rs.Get("missing")
	assert.False(t, ok)
}

func TestDomains(t *testing.T) {
	d := testDomains()

	tests := []struct {
		host                    string
		allowed, gov, central bool
	}{
		{"freejobalert.com", true, false, false},
		{"www.freejobalert.com", true, false, false},
		{"uppsc.up.nic.in", true, true, false},
		{"ssc.gov.in", false, true, true},
		{"cdn.ssc.gov.in", false, true, true},
		{"notssc.gov.in", false, true, false},
		{"example.com", false, false, false},
		{"", false, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.host, func(t *testing.T) {
			assert.Equal(t, tc.allowed, d.Allowed(tc.host))
			assert.Equal(t, tc.gov, d.Gov(tc.host))
			assert.Equal(t, tc.central, d.Central(tc.host))
			assert.Equal(t, tc.allowed || tc.gov, d.Trusted(tc.host))
		})
	}
}

func TestHost(t *testing.T) {
	assert.Equal(t, "uppsc.up.nic.in", Host("https://UPPSC.up.nic.in/notice.pdf"))
	assert.Equal(t, "example.com", Host(" http://www.example.com:8080/x "))
	assert.Equal(t, "", Host("://bad"))
}

func TestTiering(t *testing.T) {
	tr := NewTiering(testDomains(), TierVocab{
		Central:    keywords.New("ssc cgl", "railway"),
		Regional:   keywords.New("uppsc", "bpsc"),
		StateCodes: []string{"up", "BR"},
	})

	tests := []struct {
		name string
		res  model.SearchResult
		tier int
		rule string
	}{
		{"central domain", model.SearchResult{Title: "Notice", Link: "https://ssc.gov.in/a"}, TierCentral, "central-domain"},
		{"central topic", model.SearchResult{Title: "SSC CGL 2026 form", Link: "https://example.com/x"}, TierCentral, "central-topic"},
		{"psc host", model.SearchResult{Title: "Notice", Link: "https://uppsc.up.nic.in/notice.pdf"}, TierStatePSC, "state-psc"},
		{"psc text", model.SearchResult{Title: "BPSC TRE 4.0", Link: "https://example.com/x"}, TierStatePSC, "state-psc"},
		{"state code", model.SearchResult{Title: "Jobs", Link: "https://health.br.gov.in/jobs"}, TierStateGov, "state-gov"},
		{"any gov", model.SearchResult{Title: "Jobs", Link: "https://dept.gov.in/jobs"}, TierStateGov, "state-gov"},
		{"other", model.SearchResult{Title: "Jobs", Link: "https://blog.example.com/jobs"}, TierUnknown, "default"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tier, rule := tr.Explain(tc.res)
			assert.Equal(t, tc.tier, tier)
			assert.Equal(t, tc.rule, rule)
			assert.Equal(t, tc.tier, tr.Tier(tc.res))
		})
	}
}

func TestStateLabel(t *testing.T) {
	codes := map[string]bool{"up": true, "mp": true}
	assert.True(t, stateLabel("x.up.nic.in", codes))
	assert.True(t, stateLabel("mp.gov.in", codes))
	assert.False(t, stateLabel("x.ka.gov.in", codes))
	assert.False(t, stateLabel("up.example.in", codes))
	assert.False(t, stateLabel("in", codes))
}

func link(t *testing.T, raw, label, pageHost string) LinkCandidate {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return LinkCandidate{URL: u, Label: label, PageHost: pageHost}
}

func TestLinkRules_Individually(t *testing.T) {
	rs := LinkRules(testDomains())

	tests := []struct {
		rule string
		c    LinkCandidate
		want bool
	}{
		{"document", link(t, "https://a.com/files/advt.PDF", "", ""), true},
		{"document", link(t, "https://a.com/files/advt.html", "", ""), false},
		{"same-host", link(t, "https://www.board.org/x", "", "board.org"), true},
		{"same-host", link(t, "https://other.org/x", "", "board.org"), false},
		{"trusted-domain", link(t, "https://ssc.gov.in/x", "", ""), true},
		{"trusted-domain", link(t, "https://ssc.com/x", "", ""), false},
		{"notice-keywords", link(t, "https://a.com/x", "Detailed Notification", ""), true},
		{"notice-keywords", link(t, "https://a.com/recruitment/2026", "", ""), true},
		{"apply-keywords", link(t, "https://a.com/x", "Apply Online", ""), true},
		{"noise", link(t, "https://a.com/login", "", ""), true},
		{"noise", link(t, "https://a.com/x", "Share on WhatsApp", ""), true},
		{"procurement", link(t, "https://a.com/tenders/2026", "", ""), true},
		{"procurement", link(t, "https://a.com/jobs", "Vacancy", ""), false},
	}
	for _, tc := range tests {
		t.Run(tc.rule+" "+tc.c.URL.String(), func(t *testing.T) {
			r, ok := rs.Get(tc.rule)
			require.True(t, ok)
			assert.Equal(t, tc.want, r.When(tc.c))
		})
	}
}

func TestLinkRules_Aggregate(t *testing.T) {
	rs := LinkRules(testDomains())

	notice := link(t, "https://uppsc.up.nic.in/notification/advt-01.pdf", "Detailed Notification", "uppsc.up.nic.in")
	tender := link(t, "https://uppsc.up.nic.in/tender/2026.pdf", "Tender", "uppsc.up.nic.in")
	login := link(t, "https://portal.example.com/login", "Login", "uppsc.up.nic.in")

	assert.Equal(t, 50+15+15+20, rs.Score(notice))
	assert.Equal(t, 50+15+15-40, rs.Score(tender))
	assert.Equal(t, -30, rs.Score(login))
	assert.Greater(t, rs.Score(notice), rs.Score(tender))
}

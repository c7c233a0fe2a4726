package titles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplay(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"UPPSC Recruitment Notification Dated 12.03.2026", "UPPSC Recruitment Notification"},
		{"SSC CGL 2026 Notification | Sarkari Result", "SSC CGL 2026 Notification"},
		{"SSC | CGL", "SSC | CGL"},
		{"  BPSC  TRE\t4.0 (  ) ", "BPSC TRE 4.0"},
		{"review officer recruitment", "Review Officer Recruitment"},
		{"Apply at https://uppsc.up.nic.in/apply?utm_source=x now", "Apply at now"},
		{"https://ssc.gov.in/notice.pdf", Fallback},
		{"", Fallback},
		{"Online Form", "Online Form"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Display(tc.in))
		})
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "cafe resume", Fold("Café Résumé"))
}

func TestExamKey(t *testing.T) {
	assert.Equal(t, "ssc cgl", ExamKey("SSC CGL 2026 Notification"))
	assert.Equal(t, "ssc cgl", ExamKey("SSC CGL 2026 Online Form Apply"))
	assert.Equal(t, "ssc chsl", ExamKey("SSC CHSL 2026"))
	assert.Equal(t, "uppsc review officer", ExamKey("UPPSC Review Officer Recruitment 2026 – Apply Online"))
	assert.Equal(t, "", ExamKey("Admit Card Out 2025"))
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"bpsc", "tre"}, Tokens("bpsc tre 4 0 bpsc"))
	assert.Nil(t, Tokens("a bb"))
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 1.0, Jaccard([]string{"ssc", "cgl"}, []string{"cgl", "ssc"}))
	assert.InDelta(t, 1.0/3.0, Jaccard([]string{"ssc", "cgl"}, []string{"ssc", "chsl"}), 1e-9)
	assert.Equal(t, 0.0, Jaccard(nil, nil))
	assert.Equal(t, 0.0, Jaccard([]string{"ssc"}, nil))
}

func TestSimilarity_Examples(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("SSC CGL 2026 Notification", "SSC CGL 2026 Online Form Apply"))
	assert.InDelta(t, 1.0/3.0, Similarity("SSC CGL 2026", "SSC CHSL 2026"), 1e-9)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "uppsc-review-officer-2026", Slug("UPPSC: Review Officer (2026)"))
	assert.Equal(t, "job", Slug("!!!"))
	assert.Equal(t, "job", Slug("भर्ती"))
	long := Slug("a very long title that keeps going and going well past the sixty character limit")
	assert.LessOrEqual(t, len(long), 60)
	assert.NotEqual(t, '-', rune(long[len(long)-1]))
}

package jobparse

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"govjobs/harvester-service/internal/llm"
	"govjobs/harvester-service/internal/model"
	"govjobs/harvester-service/internal/rank"
	"govjobs/harvester-service/internal/stage"
)

type fakeClient struct {
	job   *model.ParsedJob
	err   error
	calls int
}

func (f *fakeClient) ExtractJob(_ context.Context, _ llm.Request) (*model.ParsedJob, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	job := *f.job
	return &job, nil
}

func (f *fakeClient) Name() string { return "fake" }

var uppsc = model.SearchResult{
	Title: "UPPSC Recruitment Notification Dated 12.03.2026",
	Link:  "https://uppsc.up.nic.in/notice.pdf",
	Snippet: "UPPSC invites applications for 411 posts of Review Officer. Age Limit: 21-40 years. " +
		"Fee: General Rs 125, SC/ST Rs 65. Last Date: 11/04/2026. Graduate degree required.",
}

func testDomains() *rank.Domains {
	return rank.NewDomains([]string{"uppsc.up.nic.in"}, []string{"gov.in", "nic.in"}, nil)
}

func TestFallback_FromSnippet(t *testing.T) {
	p := Fallback(uppsc, nil)

	assert.Equal(t, stage.LatestJobs, p.Category)
	assert.Contains(t, p.ImportantDates, "Last Date: 11/04/2026")
	assert.Equal(t, "General: Rs 125", p.ApplicationFee[0])
	assert.Equal(t, []string{"Minimum: 21 years", "Maximum: 40 years"}, p.AgeLimit)

	require.Len(t, p.VacancyDetails, 1)
	assert.Equal(t, "Review Officer", p.VacancyDetails[0].PostName)
	assert.Equal(t, "411", p.VacancyDetails[0].TotalPost)
	assert.Equal(t, "graduate", p.VacancyDetails[0].Eligibility)

	assert.Equal(t, []model.Link{{Label: "Official Source", URL: uppsc.Link}}, p.ImportantLinks)
}

func TestFallback_AlwaysComplete(t *testing.T) {
	p := Fallback(model.SearchResult{Title: "Something"}, nil)

	assert.Equal(t, []string{model.Unknown}, p.ImportantDates)
	assert.Equal(t, []string{model.Unknown}, p.ApplicationFee)
	assert.Equal(t, []string{model.Unknown}, p.AgeLimit)
	require.Len(t, p.VacancyDetails, 1)
	assert.Equal(t, model.VacancyDetail{PostName: model.Unknown, TotalPost: model.Unknown, Eligibility: model.Unknown}, p.VacancyDetails[0])
	assert.NotNil(t, p.ImportantLinks)
	assert.Empty(t, p.ImportantLinks)
}

func TestFallback_RankedLinks(t *testing.T) {
	links := []model.RankedLink{
		{URL: "https://uppsc.up.nic.in/advt.pdf", Label: "Advertisement", Score: 100},
		{URL: "https://uppsc.up.nic.in/apply", Label: "", Score: 25},
		{URL: "https://uppsc.up.nic.in/login", Label: "Login", Score: -15},
	}
	p := Fallback(uppsc, links)
	assert.Equal(t, []model.Link{
		{Label: "Advertisement", URL: "https://uppsc.up.nic.in/advt.pdf"},
		{Label: "Official Link", URL: "https://uppsc.up.nic.in/apply"},
		{Label: "Official Source", URL: uppsc.Link},
	}, p.ImportantLinks)
}

func TestFees(t *testing.T) {
	assert.Equal(t, []string{"Rs 1000"}, fees("Application fee ₹1,000/- only"))
	assert.Equal(t, []string{"OBC: Rs 100", "Female: Rs 0"}, fees("OBC: INR 100; Female candidates Rs. 0"))
	assert.Empty(t, fees("15 years of service"))
}

func TestAges(t *testing.T) {
	assert.Equal(t, []string{"Minimum: 18 years"}, ages("Minimum age 18 as on 01/01/2026"))
	assert.Equal(t, []string{"Maximum: 35 years"}, ages("Max. Age: 35"))
	assert.Empty(t, ages("candidates must hold 10th certificate"))
}

func TestExtract_NilClientFallsBack(t *testing.T) {
	e := New(nil, testDomains(), zap.NewNop())
	out := e.Extract(context.Background(), uppsc, model.ExtractionContext{})

	assert.Equal(t, SourceFallback, out.Source)
	assert.NoError(t, out.Err)
	assert.Equal(t, "UPPSC Recruitment Notification", out.Job.Title)
	assert.Equal(t, uppsc.Link, out.Job.ApplyLink)
}

func TestExtract_ServiceErrorFallsBackWithoutRetry(t *testing.T) {
	for name, err := range map[string]error{
		"unreachable": errors.New("dial tcp: connection refused"),
		"malformed":   fmt.Errorf("%w: missing title", llm.ErrMalformed),
	} {
		t.Run(name, func(t *testing.T) {
			client := &fakeClient{err: err}
			out := New(client, testDomains(), zap.NewNop()).Extract(context.Background(), uppsc, model.ExtractionContext{})

			assert.Equal(t, 1, client.calls)
			assert.Equal(t, SourceFallback, out.Source)
			assert.ErrorIs(t, out.Err, err)
			require.Len(t, out.Job.VacancyDetails, 1)
			assert.NotEmpty(t, out.Job.ImportantDates)
			assert.NotEmpty(t, out.Job.Title)
		})
	}
}

func TestExtract_ServicePostProcessing(t *testing.T) {
	client := &fakeClient{job: &model.ParsedJob{
		Title:          "uppsc review officer recruitment 2026",
		ShortInfo:      "  UPPSC has released   411 posts. ",
		ImportantDates: []string{model.Unknown},
		ApplicationFee: []string{" ", "General: Rs 125"},
		ImportantLinks: []model.Link{
			{Label: "Notification", URL: "javascript:void(0)"},
			{Label: "Apply Online", URL: " https://uppsc.up.nic.in/apply "},
			{Label: "Mirror", URL: "ftp://files.example.com/notice.pdf"},
		},
		ApplyLink: "not a url",
	}}
	ec := model.ExtractionContext{DateHints: []string{"Last Date: 11/04/2026"}}

	out := New(client, testDomains(), zap.NewNop()).Extract(context.Background(), uppsc, ec)

	require.Equal(t, SourceService, out.Source)
	assert.Equal(t, "uppsc review officer recruitment 2026", out.RawTitle)
	p := out.Job
	assert.Equal(t, "Uppsc Review Officer Recruitment 2026", p.Title)
	assert.Equal(t, "UPPSC has released 411 posts.", p.ShortInfo)
	assert.Equal(t, []string{"Last Date: 11/04/2026"}, p.ImportantDates)
	assert.Equal(t, []string{"General: Rs 125"}, p.ApplicationFee)
	assert.Equal(t, []model.Link{{Label: "Apply Online", URL: "https://uppsc.up.nic.in/apply"}}, p.ImportantLinks)
	assert.Equal(t, "https://uppsc.up.nic.in/apply", p.ApplyLink)
	assert.NotNil(t, p.AgeLimit)
	assert.NotNil(t, p.VacancyDetails)
}

func TestExtract_DatesCapped(t *testing.T) {
	var dates, hints []string
	for i := 1; i <= 12; i++ {
		dates = append(dates, fmt.Sprintf("Event %d: %02d/01/2026", i, i))
		hints = append(hints, fmt.Sprintf("%02d/02/2026", i))
	}
	client := &fakeClient{job: &model.ParsedJob{Title: "SSC CGL 2026 Notification", ImportantDates: dates}}
	out := New(client, testDomains(), zap.NewNop()).Extract(context.Background(), uppsc, model.ExtractionContext{DateHints: hints})

	assert.Len(t, out.Job.ImportantDates, MaxDates)
	assert.Equal(t, dates, out.Job.ImportantDates[:12])
}

func TestApplyLinkPreference(t *testing.T) {
	c := model.SearchResult{Title: "Board Recruitment 2026 Notification", Link: "https://jobs.example.com/post/1"}
	tests := []struct {
		name string
		job  model.ParsedJob
		want string
	}{
		{
			name: "apply label wins over trusted domain",
			job: model.ParsedJob{ImportantLinks: []model.Link{
				{Label: "Notice", URL: "https://ssc.gov.in/notice.pdf"},
				{Label: "Registration", URL: "https://portal.example.org/register"},
			}},
			want: "https://portal.example.org/register",
		},
		{
			name: "trusted domain wins over candidate link",
			job: model.ParsedJob{
				ApplyLink: "https://blog.example.com/apply",
				ImportantLinks: []model.Link{
					{Label: "Notice", URL: "https://example.com/n"},
					{Label: "Official", URL: "https://ssc.gov.in/notice.pdf"},
				},
			},
			want: "https://ssc.gov.in/notice.pdf",
		},
		{
			name: "candidate link last",
			job:  model.ParsedJob{ImportantLinks: []model.Link{{Label: "Notice", URL: "https://example.com/n"}}},
			want: c.Link,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.job.Title = c.Title
			out := New(&fakeClient{job: &tc.job}, testDomains(), zap.NewNop()).
				Extract(context.Background(), c, model.ExtractionContext{})
			assert.Equal(t, tc.want, out.Job.ApplyLink)
		})
	}
}

func TestDisplayTitle_WeakServiceTitle(t *testing.T) {
	client := &fakeClient{job: &model.ParsedJob{Title: "Online Form"}}
	out := New(client, testDomains(), zap.NewNop()).Extract(context.Background(), uppsc, model.ExtractionContext{})
	assert.Equal(t, "UPPSC Recruitment Notification", out.Job.Title)
}

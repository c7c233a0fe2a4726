package stage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		title, summary, link string
		want                 string
	}{
		{"SSC CGL 2026 Answer Key", "admit card and result soon", "", AnswerKey},
		{"SSC CGL 2026 Admit Card", "result next month", "", AdmitCard},
		{"UPSC CSE Final Result", "", "", Results},
		{"BPSC TRE", "", "https://bpsc.bih.nic.in/hall-ticket", AdmitCard},
		{"UPSSSC PET Syllabus 2026", "", "", Syllabus},
		{"NEET UG Counselling", "", "", Admission},
		{"UPPSC Review Officer Recruitment", "Apply online", "", LatestJobs},
	}
	for _, tc := range tests {
		t.Run(tc.title, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.title, tc.summary, tc.link))
		})
	}
	assert.True(t, IsDefault(LatestJobs))
	assert.True(t, IsDefault(""))
	assert.False(t, IsDefault(Results))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"01/01/2020", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"Last Date: 12-04-2026", time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC), true},
		{"closing 5.11.2026", time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC), true},
		{"Last Date: 21st March 2026", time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC), true},
		{"end date 3 Sept, 2026", time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC), true},
		{"31/02/2026", time.Time{}, false},
		{"Last Date: 31/02/2026 (revised 15/03/2026)", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"12 Foo 2026", time.Time{}, false},
		{"soon", time.Time{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseDate(tc.in, time.UTC)
			require.Equal(t, tc.ok, ok)
			assert.True(t, tc.want.Equal(got))
		})
	}
}

func TestClosingDate_FirstParsedClosingEntry(t *testing.T) {
	got, ok := ClosingDate([]string{
		"Start Date: 01/03/2026",
		"Last Date: to be announced",
		"Last Date Fee Payment: 14/04/2026",
		"Closing: 20/04/2026",
	}, time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 4, 14, 0, 0, 0, 0, time.UTC), got)

	_, ok = ClosingDate([]string{"Exam Date: 01/06/2026"}, time.UTC)
	assert.False(t, ok)
}

func TestFilter_Expired(t *testing.T) {
	now := time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)
	f := &Filter{Now: func() time.Time { return now }}

	expired, closing := f.Expired(LatestJobs, []string{"Last Date: 01/01/2020"})
	assert.True(t, expired)
	assert.Equal(t, 2020, closing.Year())

	expired, _ = f.Expired(LatestJobs, []string{"Last Date: 15/03/2026"})
	assert.False(t, expired, "closing today is still open")

	expired, _ = f.Expired(LatestJobs, []string{"Last Date: 14/03/2026"})
	assert.True(t, expired)

	expired, _ = f.Expired(Admission, []string{"Last Date: 14/03/2026"})
	assert.True(t, expired)

	expired, _ = f.Expired(Results, []string{"Last Date: 01/01/2020"})
	assert.False(t, expired, "only vacancies expire")

	expired, _ = f.Expired(LatestJobs, []string{"Exam Date: 01/01/2020"})
	assert.False(t, expired)
}

func TestNewFilter_UsesWallClock(t *testing.T) {
	f := NewFilter()
	expired, _ := f.Expired(LatestJobs, []string{"Last Date: 01/01/2999"})
	assert.False(t, expired)
}

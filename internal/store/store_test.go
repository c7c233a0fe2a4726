package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govjobs/harvester-service/internal/model"
)

func job(id, title string, active bool, at time.Time) model.JobRecord {
	return model.JobRecord{
		ID:        id,
		ParsedJob: model.ParsedJob{Title: title, ApplyLink: "https://example.gov.in/" + id},
		IsActive:  active,
		PostDate:  at,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestMemory_Lookups(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := job("a", "SSC CGL 2026", true, t0)
	a.SourceURL = "https://ssc.gov.in/cgl"
	m := NewMemory(a, job("b", "UPSC CSE 2026", false, t0.Add(time.Hour)), job("c", "RRB NTPC 2026", true, t0.Add(2*time.Hour)))

	ok, err := m.ExistsByLink(ctx, "https://ssc.gov.in/cgl")
	require.NoError(t, err)
	assert.True(t, ok, "source url")
	ok, _ = m.ExistsByLink(ctx, "https://example.gov.in/b")
	assert.True(t, ok, "apply link")
	ok, _ = m.ExistsByLink(ctx, "")
	assert.False(t, ok)

	ok, _ = m.ExistsByTitle(ctx, "UPSC CSE 2026")
	assert.True(t, ok)
	ok, _ = m.ExistsByTitle(ctx, "upsc cse 2026")
	assert.False(t, ok, "exact match only")

	recent, err := m.RecentRecords(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "b", recent[1].ID)

	active, err := m.ListActive(ctx, 10)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "c", active[0].ID)
	assert.Equal(t, "a", active[1].ID)

	_, err = m.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_CopiesRecords(t *testing.T) {
	ctx := context.Background()
	rec := job("a", "SSC CGL 2026", true, time.Now())
	rec.ImportantDates = []string{"Last Date: 01/05/2026"}
	m := NewMemory(rec)

	rec.ImportantDates[0] = "changed"
	got, err := m.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Last Date: 01/05/2026", got.ImportantDates[0])

	got.ImportantDates[0] = "changed again"
	again, _ := m.GetByID(ctx, "a")
	assert.Equal(t, "Last Date: 01/05/2026", again.ImportantDates[0])
}

func TestMemory_UpdateKeepsActivationAndProvenance(t *testing.T) {
	ctx := context.Background()
	rec := job("a", "SSC CGL 2026", true, time.Now())
	rec.CreatedBy = "admin"
	m := NewMemory(rec)

	upd := rec
	upd.IsActive = false
	upd.CreatedBy = model.CreatedByAgent
	upd.ShortInfo = "new summary"
	require.NoError(t, m.UpdateJob(ctx, upd))

	got, _ := m.GetByID(ctx, "a")
	assert.True(t, got.IsActive)
	assert.Equal(t, "admin", got.CreatedBy)
	assert.Equal(t, "new summary", got.ShortInfo)

	assert.ErrorIs(t, m.UpdateJob(ctx, job("zz", "x", false, time.Now())), ErrNotFound)
}

type flakyStore struct {
	*Memory
	caps    Capabilities
	provErr error
	rawErr  error
}

func (f *flakyStore) Capabilities() Capabilities { return f.caps }

func (f *flakyStore) UpdateProvenance(ctx context.Context, rec model.JobRecord) error {
	if f.provErr != nil {
		return f.provErr
	}
	return f.Memory.UpdateProvenance(ctx, rec)
}

func (f *flakyStore) InsertRawPost(ctx context.Context, p model.RawPost) error {
	if f.rawErr != nil {
		return f.rawErr
	}
	return f.Memory.InsertRawPost(ctx, p)
}

func TestInsert(t *testing.T) {
	ctx := context.Background()
	rec := job("uppsc-ro-1a2b3c4d", "UPPSC Review Officer 2026", false, time.Now())
	rec.SourceURL = "https://uppsc.up.nic.in/notice.pdf"
	rec.SourceDomain = "uppsc.up.nic.in"
	rec.CreatedBy = model.CreatedByAgent
	rec.QualityScore = 70

	t.Run("full schema", func(t *testing.T) {
		m := NewMemory()
		res, err := Insert(ctx, m, rec, &model.RawPost{ID: "raw-1", Title: "raw title"})
		require.NoError(t, err)
		assert.False(t, res.Partial())
		assert.Equal(t, rec.ID, res.ID)

		got, _ := m.GetByID(ctx, rec.ID)
		assert.Equal(t, "uppsc.up.nic.in", got.SourceDomain)
		assert.Equal(t, 70, got.QualityScore)
		require.Len(t, m.RawPosts(), 1)
		assert.Equal(t, rec.ID, m.RawPosts()[0].JobID)
	})

	t.Run("secondary failures are reported, not returned", func(t *testing.T) {
		provErr, rawErr := errors.New("column missing"), errors.New("table missing")
		s := &flakyStore{Memory: NewMemory(), caps: Full, provErr: provErr, rawErr: rawErr}

		res, err := Insert(ctx, s, rec, &model.RawPost{ID: "raw-1"})
		require.NoError(t, err)
		assert.True(t, res.Partial())
		assert.ErrorIs(t, res.SecondaryErr, provErr)
		assert.ErrorIs(t, res.SecondaryErr, rawErr)

		_, err = s.GetByID(ctx, rec.ID)
		assert.NoError(t, err, "primary write kept")
	})

	t.Run("base schema skips secondary writes", func(t *testing.T) {
		s := &flakyStore{Memory: NewMemory(), caps: CapabilitiesFor(1), provErr: errors.New("boom"), rawErr: errors.New("boom")}
		res, err := Insert(ctx, s, rec, &model.RawPost{ID: "raw-1"})
		require.NoError(t, err)
		assert.False(t, res.Partial())
		assert.Empty(t, s.RawPosts())
	})

	t.Run("primary failure", func(t *testing.T) {
		m := NewMemory(rec)
		_, err := Insert(ctx, m, rec, nil)
		assert.Error(t, err)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	rec := job("uppsc-ro-1a2b3c4d", "UPPSC Review Officer 2026", false, time.Now())
	rec.SourceURL = "https://uppsc.up.nic.in/notice.pdf"
	rec.SourceDomain = "uppsc.up.nic.in"
	rec.CreatedBy = model.CreatedByAgent
	rec.QualityScore = 5

	changed := rec
	changed.ShortInfo = "Applications open for 411 posts."
	changed.QualityScore = 80

	t.Run("full schema stores the new quality score", func(t *testing.T) {
		m := NewMemory()
		_, err := Insert(ctx, m, rec, nil)
		require.NoError(t, err)

		res, err := Update(ctx, m, changed)
		require.NoError(t, err)
		assert.False(t, res.Partial())

		got, err := m.GetByID(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, 80, got.QualityScore)
		assert.Equal(t, "Applications open for 411 posts.", got.ShortInfo)
		assert.Equal(t, "uppsc.up.nic.in", got.SourceDomain)
	})

	t.Run("provenance failure is reported, not returned", func(t *testing.T) {
		provErr := errors.New("column missing")
		s := &flakyStore{Memory: NewMemory(rec), caps: Full, provErr: provErr}

		res, err := Update(ctx, s, changed)
		require.NoError(t, err)
		assert.ErrorIs(t, res.SecondaryErr, provErr)

		got, _ := s.GetByID(ctx, rec.ID)
		assert.Equal(t, "Applications open for 411 posts.", got.ShortInfo, "content write kept")
	})

	t.Run("base schema skips provenance", func(t *testing.T) {
		s := &flakyStore{Memory: NewMemory(rec), caps: CapabilitiesFor(1), provErr: errors.New("boom")}
		res, err := Update(ctx, s, changed)
		require.NoError(t, err)
		assert.False(t, res.Partial())
	})

	t.Run("missing record", func(t *testing.T) {
		_, err := Update(ctx, NewMemory(), changed)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

type fakeRow struct {
	vals []bool
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		*d.(*bool) = r.vals[i]
	}
	return nil
}

type fakeQuerier struct {
	row   fakeRow
	calls int
}

func (q *fakeQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	q.calls++
	return q.row
}

func TestResolveCapabilities(t *testing.T) {
	ctx := context.Background()

	for v, want := range map[string]Capabilities{
		"1": {Version: 1},
		"2": {Version: 2, Provenance: true},
		"3": {Version: 3, Provenance: true, RawPosts: true},
	} {
		q := &fakeQuerier{}
		got, err := ResolveCapabilities(ctx, q, v)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Zero(t, q.calls, "fixed versions never probe")
	}

	probes := []struct {
		row  []bool
		want int
	}{
		{[]bool{true, true}, 3},
		{[]bool{true, false}, 2},
		{[]bool{false, true}, 1},
		{[]bool{false, false}, 1},
	}
	for _, p := range probes {
		q := &fakeQuerier{row: fakeRow{vals: p.row}}
		got, err := ResolveCapabilities(ctx, q, "auto")
		require.NoError(t, err)
		assert.Equal(t, p.want, got.Version)
		assert.Equal(t, 1, q.calls)
	}

	_, err := ResolveCapabilities(ctx, &fakeQuerier{row: fakeRow{err: errors.New("no db")}}, "auto")
	assert.Error(t, err)

	_, err = ResolveCapabilities(ctx, &fakeQuerier{}, "4")
	assert.Error(t, err)
}

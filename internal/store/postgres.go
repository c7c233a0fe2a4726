package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"govjobs/harvester-service/internal/model"
)

const baseColumns = `id, title, category, short_info, important_dates, application_fee, age_limit,
	vacancy_details, important_links, apply_link, post_date, is_active, created_at, updated_at`

const provenanceColumns = `, COALESCE(source_url, ''), COALESCE(source_domain, ''),
	COALESCE(created_by, ''), COALESCE(quality_score, 0)`

// Postgres is the pgx-backed Store over the jobs and raw_posts tables.
type Postgres struct {
	pool *pgxpool.Pool
	caps Capabilities
}

// NewPostgres returns a store for a schema with the given capabilities.
func NewPostgres(pool *pgxpool.Pool, caps Capabilities) *Postgres {
	return &Postgres{pool: pool, caps: caps}
}

// Capabilities implements Store.
func (p *Postgres) Capabilities() Capabilities { return p.caps }

func (p *Postgres) columns() string {
	if p.caps.Provenance {
		return baseColumns + provenanceColumns
	}
	return baseColumns
}

// ExistsByLink implements Store.
func (p *Postgres) ExistsByLink(ctx context.Context, link string) (bool, error) {
	q := `SELECT EXISTS (SELECT 1 FROM jobs WHERE apply_link = $1)`
	if p.caps.Provenance {
		q = `SELECT EXISTS (SELECT 1 FROM jobs WHERE apply_link = $1 OR source_url = $1)`
	}
	var ok bool
	if err := p.pool.QueryRow(ctx, q, link).Scan(&ok); err != nil {
		return false, fmt.Errorf("existsByLink: %w", err)
	}
	return ok, nil
}

// ExistsByTitle implements Store.
func (p *Postgres) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var ok bool
	err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE title = $1)`, title).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("existsByTitle: %w", err)
	}
	return ok, nil
}

// RecentRecords implements Store.
func (p *Postgres) RecentRecords(ctx context.Context, limit int) ([]model.JobRecord, error) {
	return p.list(ctx, `SELECT `+p.columns()+` FROM jobs ORDER BY updated_at DESC LIMIT $1`, limit)
}

// ListActive implements Store.
func (p *Postgres) ListActive(ctx context.Context, limit int) ([]model.JobRecord, error) {
	return p.list(ctx, `SELECT `+p.columns()+` FROM jobs WHERE is_active = true ORDER BY post_date DESC LIMIT $1`, limit)
}

// GetByID implements Store.
func (p *Postgres) GetByID(ctx context.Context, id string) (*model.JobRecord, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+p.columns()+` FROM jobs WHERE id = $1`, id)
	rec, err := p.scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getByID: %w", err)
	}
	return rec, nil
}

func (p *Postgres) list(ctx context.Context, q string, limit int) ([]model.JobRecord, error) {
	rows, err := p.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs query: %w", err)
	}
	defer rows.Close()

	recs := make([]model.JobRecord, 0)
	for rows.Next() {
		rec, err := p.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("list jobs scan: %w", err)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

func (p *Postgres) scan(row pgx.Row) (*model.JobRecord, error) {
	var (
		r                              model.JobRecord
		dates, fees, ages, vacs, links []byte
	)
	dest := []any{
		&r.ID, &r.Title, &r.Category, &r.ShortInfo, &dates, &fees, &ages,
		&vacs, &links, &r.ApplyLink, &r.PostDate, &r.IsActive, &r.CreatedAt, &r.UpdatedAt,
	}
	if p.caps.Provenance {
		dest = append(dest, &r.SourceURL, &r.SourceDomain, &r.CreatedBy, &r.QualityScore)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	for _, f := range []struct {
		raw []byte
		dst any
	}{
		{dates, &r.ImportantDates},
		{fees, &r.ApplicationFee},
		{ages, &r.AgeLimit},
		{vacs, &r.VacancyDetails},
		{links, &r.ImportantLinks},
	} {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return nil, fmt.Errorf("decode jsonb of job %s: %w", r.ID, err)
		}
	}
	r.Complete()
	return &r, nil
}

// jsonLists serialises the list fields for $n::jsonb parameters.
func jsonLists(p model.ParsedJob) ([]string, error) {
	p.Complete()
	out := make([]string, 0, 5)
	for _, v := range []any{p.ImportantDates, p.ApplicationFee, p.AgeLimit, p.VacancyDetails, p.ImportantLinks} {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out = append(out, string(b))
	}
	return out, nil
}

// InsertJob implements Store. It writes the base columns only; provenance
// goes through UpdateProvenance.
func (p *Postgres) InsertJob(ctx context.Context, rec model.JobRecord) error {
	lists, err := jsonLists(rec.ParsedJob)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", rec.ID, err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO jobs (id, title, category, short_info, important_dates, application_fee,
		                   age_limit, vacancy_details, important_links, apply_link, post_date,
		                   is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7::jsonb, $8::jsonb, $9::jsonb, $10, $11,
		         $12, $13, $14)`,
		rec.ID, rec.Title, rec.Category, rec.ShortInfo,
		lists[0], lists[1], lists[2], lists[3], lists[4],
		rec.ApplyLink, rec.PostDate, rec.IsActive, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insertJob: %w", err)
	}
	return nil
}

// UpdateJob implements Store. Activation and provenance are not touched.
func (p *Postgres) UpdateJob(ctx context.Context, rec model.JobRecord) error {
	lists, err := jsonLists(rec.ParsedJob)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", rec.ID, err)
	}
	tag, err := p.pool.Exec(ctx,
		`UPDATE jobs
		 SET title = $2, category = $3, short_info = $4,
		     important_dates = $5::jsonb, application_fee = $6::jsonb, age_limit = $7::jsonb,
		     vacancy_details = $8::jsonb, important_links = $9::jsonb,
		     apply_link = $10, updated_at = $11
		 WHERE id = $1`,
		rec.ID, rec.Title, rec.Category, rec.ShortInfo,
		lists[0], lists[1], lists[2], lists[3], lists[4],
		rec.ApplyLink, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updateJob: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProvenance implements Store.
func (p *Postgres) UpdateProvenance(ctx context.Context, rec model.JobRecord) error {
	if !p.caps.Provenance {
		return fmt.Errorf("schema version %d has no provenance columns", p.caps.Version)
	}
	_, err := p.pool.Exec(ctx,
		`UPDATE jobs
		 SET source_url = $2, source_domain = $3, created_by = $4, quality_score = $5
		 WHERE id = $1`,
		rec.ID, rec.SourceURL, rec.SourceDomain, rec.CreatedBy, rec.QualityScore,
	)
	if err != nil {
		return fmt.Errorf("updateProvenance: %w", err)
	}
	return nil
}

// InsertRawPost implements Store.
func (p *Postgres) InsertRawPost(ctx context.Context, rp model.RawPost) error {
	if !p.caps.RawPosts {
		return fmt.Errorf("schema version %d has no raw_posts table", p.caps.Version)
	}
	payload := rp.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO raw_posts (id, job_id, source_url, title, snippet, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)`,
		rp.ID, rp.JobID, rp.SourceURL, rp.Title, rp.Snippet, string(payload), rp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insertRawPost: %w", err)
	}
	return nil
}

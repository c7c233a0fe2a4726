package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Capabilities describes which optional parts of the job schema exist.
// It is resolved once at startup and handed to the store.
//
//	version 1: base jobs table
//	version 2: + source_url, source_domain, created_by, quality_score
//	version 3: + raw_posts table
type Capabilities struct {
	Version    int
	Provenance bool
	RawPosts   bool
}

// CapabilitiesFor returns the descriptor of a fixed schema version.
func CapabilitiesFor(version int) Capabilities {
	return Capabilities{
		Version:    version,
		Provenance: version >= 2,
		RawPosts:   version >= 3,
	}
}

// Full is the descriptor of the newest schema.
var Full = CapabilitiesFor(3)

// RowQuerier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ResolveCapabilities maps a configured schema version ("1", "2", "3" or
// "auto") to a descriptor. "auto" asks information_schema once.
func ResolveCapabilities(ctx context.Context, q RowQuerier, version string) (Capabilities, error) {
	switch version {
	case "1":
		return CapabilitiesFor(1), nil
	case "2":
		return CapabilitiesFor(2), nil
	case "3", "":
		return CapabilitiesFor(3), nil
	case "auto":
	default:
		return Capabilities{}, fmt.Errorf("unknown schema version %q", version)
	}

	var provenance, rawPosts bool
	err := q.QueryRow(ctx,
		`SELECT
		   EXISTS (SELECT 1 FROM information_schema.columns
		           WHERE table_schema = current_schema() AND table_name = 'jobs' AND column_name = 'source_url'),
		   EXISTS (SELECT 1 FROM information_schema.tables
		           WHERE table_schema = current_schema() AND table_name = 'raw_posts')`,
	).Scan(&provenance, &rawPosts)
	if err != nil {
		return Capabilities{}, fmt.Errorf("probe schema: %w", err)
	}

	switch {
	case provenance && rawPosts:
		return CapabilitiesFor(3), nil
	case provenance:
		return CapabilitiesFor(2), nil
	default:
		return CapabilitiesFor(1), nil
	}
}

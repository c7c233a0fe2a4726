package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"govjobs/harvester-service/internal/config"
	"govjobs/harvester-service/internal/db"
	"govjobs/harvester-service/internal/events"
	"govjobs/harvester-service/internal/extract"
	"govjobs/harvester-service/internal/fetch"
	"govjobs/harvester-service/internal/jobparse"
	"govjobs/harvester-service/internal/keywords"
	"govjobs/harvester-service/internal/llm"
	"govjobs/harvester-service/internal/logging"
	"govjobs/harvester-service/internal/metrics"
	"govjobs/harvester-service/internal/quality"
	"govjobs/harvester-service/internal/rank"
	"govjobs/harvester-service/internal/scraper"
	"govjobs/harvester-service/internal/stage"
	"govjobs/harvester-service/internal/store"
)

// app is the wired pipeline plus the connections it owns.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	pool    *pgxpool.Pool
	rdb     *redis.Client
	store   store.Store
	gate    *quality.Gate
	metrics *metrics.Metrics
	worker  *scraper.Worker
}

// appOptions select the dry-run variants used by the sweep command.
type appOptions struct {
	memory  bool // in-memory store, no Redis
	search  scraper.ResultFetcher
	httpDoc *http.Client
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, metrics: metrics.New()}

	// ── Storage ─────────────────────────────────────────────────────────────
	if opts.memory {
		log.Info("using in-memory store")
		a.store = store.NewMemory()
	} else {
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required (use --memory for a dry run)")
		}
		log.Info("connecting to PostgreSQL")
		a.pool, err = db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		caps, err := store.ResolveCapabilities(ctx, a.pool, cfg.SchemaVersion)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("store capabilities: %w", err)
		}
		log.Info("store schema resolved",
			zap.Int("version", caps.Version),
			zap.Bool("provenance", caps.Provenance),
			zap.Bool("rawPosts", caps.RawPosts))
		a.store = store.NewPostgres(a.pool, caps)

		a.rdb, err = db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		if a.rdb == nil {
			log.Warn("REDIS_URL not set, running without sweep lock and ingestion events")
		}
	}

	// ── Pipeline ────────────────────────────────────────────────────────────
	domains := rank.NewDomains(cfg.Sources.AllowedDomains, cfg.Sources.GovSuffixes, cfg.Sources.CentralDomains)
	a.gate = quality.NewGate(domains)

	client, err := llm.New(cfg.LLM, nil)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("llm: %w", err)
	}
	if client == nil {
		log.Warn("no extraction service configured, every candidate uses the pattern fallback")
	} else {
		log.Info("extraction service configured", zap.String("client", client.Name()))
	}

	search := opts.search
	if search == nil {
		search = scraper.NewSearchFetcher(cfg.Search, nil, log)
	}

	var pub events.Publisher = events.Nop{}
	if a.rdb != nil {
		pub = events.NewRedisPublisher(a.rdb)
	}

	deep := extract.NewDeep(
		fetch.New(cfg.Fetch, opts.httpDoc),
		rank.LinkRules(domains),
		extract.Options{
			FollowLinks:     cfg.Sweep.FollowLinks,
			PageTimeout:     cfg.Fetch.PageTimeout,
			DocumentTimeout: cfg.Fetch.DocumentTimeout,
		},
		log,
	)

	a.worker = scraper.NewWorker(scraper.Deps{
		Search: search,
		Store:  a.store,
		Tiering: rank.NewTiering(domains, rank.TierVocab{
			Central:    keywords.New(cfg.Sources.CentralKeywords...),
			Regional:   keywords.New(cfg.Sources.RegionalKeywords...),
			StateCodes: cfg.Sources.StateCodes,
		}),
		Domains: domains,
		Policy:  scraper.NewContentPolicy(domains, nil),
		Deep:    deep,
		Parser:  jobparse.New(client, domains, log),
		Gate:    a.gate,
		Expiry:  stage.NewFilter(),
		Events:  pub,
		Metrics: a.metrics,
		Log:     log,
	}, scraper.Options{
		Queries:             cfg.Search.Queries,
		MaxCandidates:       cfg.Sweep.MaxCandidates,
		RecentWindow:        cfg.Sweep.RecentWindow,
		SimilarityThreshold: cfg.Sweep.SimilarityThreshold,
	})
	return a, nil
}

func (a *app) close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	_ = a.log.Sync()
}

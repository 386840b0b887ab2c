package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/brandsight/rank-tracker/internal/competitor"
	"github.com/brandsight/rank-tracker/internal/db"
	"github.com/brandsight/rank-tracker/internal/rank"
	"github.com/brandsight/rank-tracker/internal/scoring"
	"github.com/brandsight/rank-tracker/pkg/serp"
)

// env holds the shared runtime wiring for a command invocation.
type env struct {
	Pool       *pgxpool.Pool
	SERP       serp.Client
	RankStore  *rank.PostgresStore
	Registry   *competitor.Registry
	ScoreStore *scoring.PostgresStore
	Scoring    *scoring.Service
}

func initEnv(ctx context.Context) (*env, error) {
	pool, err := db.Connect(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}

	e := &env{
		Pool:       pool,
		RankStore:  rank.NewPostgresStore(pool),
		Registry:   competitor.NewRegistry(pool),
		ScoreStore: scoring.NewPostgresStore(pool),
	}

	weights := scoring.Weights{
		Search:      cfg.Scoring.Weights.Search,
		Local:       cfg.Scoring.Weights.Local,
		Social:      cfg.Scoring.Weights.Social,
		Reputation:  cfg.Scoring.Weights.Reputation,
		Consistency: cfg.Scoring.Weights.Consistency,
	}
	svc, err := scoring.NewService(e.ScoreStore, weights)
	if err != nil {
		pool.Close()
		return nil, err
	}
	e.Scoring = svc

	client, err := buildSERPClient()
	if err != nil {
		pool.Close()
		return nil, err
	}
	e.SERP = client

	return e, nil
}

func buildSERPClient() (serp.Client, error) {
	var client serp.Client
	switch cfg.SERP.Provider {
	case "", "seeded":
		client = serp.NewSeededClient(serp.WithBaseSeed(cfg.SERP.Seed))
	case "http":
		opts := []serp.Option{}
		if cfg.SERP.BaseURL != "" {
			opts = append(opts, serp.WithBaseURL(cfg.SERP.BaseURL))
		}
		client = serp.NewHTTPClient(cfg.SERP.Key, opts...)
	default:
		return nil, eris.Errorf("unknown serp provider %q", cfg.SERP.Provider)
	}

	if cfg.SERP.CachePath != "" {
		cached, err := serp.NewCachingClient(client, cfg.SERP.CachePath)
		if err != nil {
			return nil, err
		}
		return cached, nil
	}
	return client, nil
}

func (e *env) Close() {
	if c, ok := e.SERP.(*serp.CachingClient); ok {
		_ = c.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
}

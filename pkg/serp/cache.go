package serp

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// CachingClient wraps a Client with a local SQLite cache keyed by
// (keyword, location, device, day). Re-running ingestion within one day
// serves results from disk instead of hitting the data source again, which
// keeps same-day re-runs free even against a paid provider.
type CachingClient struct {
	inner Client
	db    *sql.DB
	now   func() time.Time
}

// NewCachingClient opens (or creates) the cache database at path and wraps
// inner with it.
func NewCachingClient(inner Client, path string) (*CachingClient, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "serp: open cache db")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "serp: exec %s", pragma)
		}
	}

	const migration = `
	CREATE TABLE IF NOT EXISTS serp_cache (
		keyword    TEXT NOT NULL,
		location   TEXT NOT NULL,
		device     TEXT NOT NULL,
		day        TEXT NOT NULL,
		result     TEXT NOT NULL,
		fetched_at DATETIME NOT NULL DEFAULT (datetime('now')),
		PRIMARY KEY (keyword, location, device, day)
	);`
	if _, err := db.Exec(migration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "serp: migrate cache db")
	}

	return &CachingClient{inner: inner, db: db, now: time.Now}, nil
}

// Close releases the underlying database handle.
func (c *CachingClient) Close() error {
	return c.db.Close()
}

func (c *CachingClient) FetchRank(ctx context.Context, req RankRequest) (*RankResult, error) {
	day := c.now().UTC().Format("2006-01-02")

	if cached, err := c.lookup(ctx, req, day); err != nil {
		zap.L().Warn("serp: cache lookup failed", zap.String("keyword", req.Keyword), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	result, err := c.inner.FetchRank(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := c.store(ctx, req, day, result); err != nil {
		// Cache failures never fail the capture.
		zap.L().Warn("serp: cache store failed", zap.String("keyword", req.Keyword), zap.Error(err))
	}

	return result, nil
}

func (c *CachingClient) lookup(ctx context.Context, req RankRequest, day string) (*RankResult, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT result FROM serp_cache WHERE keyword = ? AND location = ? AND device = ? AND day = ?`,
		req.Keyword, req.SearchLocation, req.Device, day,
	)

	var payload string
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "serp: read cache row")
	}

	var result RankResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, eris.Wrap(err, "serp: unmarshal cached result")
	}
	return &result, nil
}

func (c *CachingClient) store(ctx context.Context, req RankRequest, day string, result *RankResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "serp: marshal result")
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO serp_cache (keyword, location, device, day, result, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		req.Keyword, req.SearchLocation, req.Device, day, string(payload), c.now().UTC(),
	)
	return eris.Wrap(err, "serp: write cache row")
}

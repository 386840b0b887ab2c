// Package competitor maintains the registry of domains observed competing
// for a business's keywords, keyed by (business, domain).
package competitor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/brandsight/rank-tracker/internal/db"
	"github.com/brandsight/rank-tracker/internal/model"
)

// metricsWindow is the lookback for rolling avg_rank and visibility_score.
const metricsWindow = 30 * 24 * time.Hour

// Registry stores and maintains competitors for a business.
type Registry struct {
	pool db.Pool
	now  func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClock overrides the clock anchoring the rolling metrics window.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates a Registry.
func NewRegistry(pool db.Pool, opts ...RegistryOption) *Registry {
	r := &Registry{pool: pool, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// UpsertByDomain inserts or updates the competitor identified by
// (businessID, domain) in one atomic statement. Patch fields that are nil
// leave the stored value untouched; a repeat sighting never spawns a second
// row for the same domain.
func (r *Registry) UpsertByDomain(ctx context.Context, businessID uuid.UUID, domain string, patch model.CompetitorPatch) (*model.Competitor, error) {
	if domain == "" {
		return nil, eris.New("competitor: domain is required")
	}

	var c model.Competitor
	err := r.pool.QueryRow(ctx, `
		INSERT INTO competitors (business_id, domain, name, avg_rank, visibility_score, review_count, rating, gbp_completeness, last_seen_at)
		VALUES ($1, $2, COALESCE($3, ''), $4, $5, $6, $7, $8, $9)
		ON CONFLICT (business_id, domain) DO UPDATE SET
			name             = COALESCE($3, competitors.name),
			avg_rank         = COALESCE($4, competitors.avg_rank),
			visibility_score = COALESCE($5, competitors.visibility_score),
			review_count     = COALESCE($6, competitors.review_count),
			rating           = COALESCE($7, competitors.rating),
			gbp_completeness = COALESCE($8, competitors.gbp_completeness),
			last_seen_at     = COALESCE($9, competitors.last_seen_at),
			updated_at       = now()
		RETURNING id, business_id, domain, name, avg_rank, visibility_score, review_count, rating, gbp_completeness, last_seen_at, created_at, updated_at`,
		businessID, domain, patch.Name, patch.AvgRank, patch.VisibilityScore,
		patch.ReviewCount, patch.Rating, patch.GBPCompleteness, patch.LastSeenAt,
	).Scan(
		&c.ID, &c.BusinessID, &c.Domain, &c.Name, &c.AvgRank, &c.VisibilityScore,
		&c.ReviewCount, &c.Rating, &c.GBPCompleteness, &c.LastSeenAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "competitor: upsert %s", domain)
	}
	return &c, nil
}

// ListByBusiness returns a business's competitors, best average rank first,
// never-ranked domains last.
func (r *Registry) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Competitor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, business_id, domain, name, avg_rank, visibility_score, review_count, rating, gbp_completeness, last_seen_at, created_at, updated_at
		FROM competitors
		WHERE business_id = $1
		ORDER BY avg_rank ASC NULLS LAST, domain`, businessID)
	if err != nil {
		return nil, eris.Wrap(err, "competitor: list by business")
	}
	defer rows.Close()

	var competitors []model.Competitor
	for rows.Next() {
		var c model.Competitor
		if err := rows.Scan(
			&c.ID, &c.BusinessID, &c.Domain, &c.Name, &c.AvgRank, &c.VisibilityScore,
			&c.ReviewCount, &c.Rating, &c.GBPCompleteness, &c.LastSeenAt, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "competitor: scan competitor")
		}
		competitors = append(competitors, c)
	}
	return competitors, rows.Err()
}

// RefreshMetrics recomputes each competitor's rolling avg_rank and
// visibility_score from its rank observations over the last 30 days.
// Visibility weights position 1 at 100 and fades out past position 20.
// Returns the number of competitors updated.
func (r *Registry) RefreshMetrics(ctx context.Context, businessID uuid.UUID) (int64, error) {
	cutoff := r.now().UTC().Add(-metricsWindow)

	tag, err := r.pool.Exec(ctx, `
		UPDATE competitors c SET
			avg_rank         = m.avg_rank,
			visibility_score = m.visibility,
			updated_at       = now()
		FROM (
			SELECT competitor_id,
				AVG(rank_position)::float8 AS avg_rank,
				AVG(GREATEST(0, 100 - (rank_position - 1) * 5))::float8 AS visibility
			FROM competitor_ranks
			WHERE captured_at >= $2
			GROUP BY competitor_id
		) m
		WHERE c.id = m.competitor_id AND c.business_id = $1`,
		businessID, cutoff)
	if err != nil {
		return 0, eris.Wrap(err, "competitor: refresh metrics")
	}

	zap.L().Info("competitor metrics refreshed",
		zap.String("business_id", businessID.String()),
		zap.Int64("updated", tag.RowsAffected()))
	return tag.RowsAffected(), nil
}

// DeleteByBusiness removes a business's competitors and their rank history.
// Returns the number of competitors removed.
func (r *Registry) DeleteByBusiness(ctx context.Context, businessID uuid.UUID) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "competitor: begin delete")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM competitor_ranks
		WHERE competitor_id IN (SELECT id FROM competitors WHERE business_id = $1)`,
		businessID); err != nil {
		return 0, eris.Wrap(err, "competitor: delete ranks")
	}

	tag, err := tx.Exec(ctx, `DELETE FROM competitors WHERE business_id = $1`, businessID)
	if err != nil {
		return 0, eris.Wrap(err, "competitor: delete competitors")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "competitor: commit delete")
	}
	return tag.RowsAffected(), nil
}

package scoring

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/brandsight/rank-tracker/internal/db"
	"github.com/brandsight/rank-tracker/internal/model"
)

// Store provides the stored signals the scorer reads and the score rows it
// writes.
type Store interface {
	RecentKeywordRanks(ctx context.Context, businessID uuid.UUID, since time.Time) ([]model.KeywordRank, error)
	LatestMapPackVisibility(ctx context.Context, businessID uuid.UUID, since time.Time) (*float64, error)
	Profile(ctx context.Context, businessID uuid.UUID) (*model.BrandProfile, error)
	AverageRating(ctx context.Context, businessID uuid.UUID) (avg float64, count int, err error)
	DNA(ctx context.Context, businessID uuid.UUID) (*model.BrandDNA, error)
	UpsertScore(ctx context.Context, score model.BrandScore) (*model.BrandScore, error)
}

// PostgresStore implements Store using pgx.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// RecentKeywordRanks returns the single most recent capture for each of the
// business's keywords since the cutoff. Keywords with no capture in the
// window are absent.
func (s *PostgresStore) RecentKeywordRanks(ctx context.Context, businessID uuid.UUID, since time.Time) ([]model.KeywordRank, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT ON (r.keyword_id)
			r.id, r.keyword_id, r.rank_position, r.map_pack_position,
			r.featured_snippet, r.local_pack, r.knowledge_panel,
			r.image_pack, r.video_carousel, r.people_also_ask,
			r.ranking_url, r.search_location, r.device, r.captured_at
		FROM keyword_ranks r
		JOIN keywords k ON k.id = r.keyword_id
		WHERE k.business_id = $1 AND r.captured_at >= $2
		ORDER BY r.keyword_id, r.captured_at DESC`,
		businessID, since)
	if err != nil {
		return nil, eris.Wrap(err, "scoring: query recent keyword ranks")
	}
	defer rows.Close()

	var ranks []model.KeywordRank
	for rows.Next() {
		var r model.KeywordRank
		if err := rows.Scan(
			&r.ID, &r.KeywordID, &r.RankPosition, &r.MapPackPosition,
			&r.Features.FeaturedSnippet, &r.Features.LocalPack, &r.Features.KnowledgePanel,
			&r.Features.ImagePack, &r.Features.VideoCarousel, &r.Features.PeopleAlsoAsk,
			&r.RankingURL, &r.SearchLocation, &r.Device, &r.CapturedAt,
		); err != nil {
			return nil, eris.Wrap(err, "scoring: scan keyword rank")
		}
		ranks = append(ranks, r)
	}
	return ranks, rows.Err()
}

// LatestMapPackVisibility returns the most recent visibility measurement
// since the cutoff, or nil when none exists.
func (s *PostgresStore) LatestMapPackVisibility(ctx context.Context, businessID uuid.UUID, since time.Time) (*float64, error) {
	var v float64
	err := s.pool.QueryRow(ctx, `
		SELECT map_pack_visibility
		FROM visibility_metrics
		WHERE business_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at DESC
		LIMIT 1`, businessID, since,
	).Scan(&v)
	if db.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "scoring: query visibility metric")
	}
	return &v, nil
}

// Profile returns the brand profile, or nil when none exists.
func (s *PostgresStore) Profile(ctx context.Context, businessID uuid.UUID) (*model.BrandProfile, error) {
	var p model.BrandProfile
	err := s.pool.QueryRow(ctx, `
		SELECT id, business_id, website_url, status
		FROM brand_profiles
		WHERE business_id = $1`, businessID,
	).Scan(&p.ID, &p.BusinessID, &p.WebsiteURL, &p.Status)
	if db.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "scoring: query brand profile")
	}
	return &p, nil
}

// AverageRating returns the mean review rating and the review count.
func (s *PostgresStore) AverageRating(ctx context.Context, businessID uuid.UUID) (float64, int, error) {
	var avg *float64
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT AVG(rating), COUNT(*)
		FROM reviews
		WHERE business_id = $1`, businessID,
	).Scan(&avg, &count)
	if err != nil {
		return 0, 0, eris.Wrap(err, "scoring: query average rating")
	}
	if avg == nil {
		return 0, 0, nil
	}
	return *avg, count, nil
}

// DNA returns the brand identity record, or nil when none exists.
func (s *PostgresStore) DNA(ctx context.Context, businessID uuid.UUID) (*model.BrandDNA, error) {
	var d model.BrandDNA
	err := s.pool.QueryRow(ctx, `
		SELECT id, business_id, brand_values, mission, voice, audience
		FROM brand_dna
		WHERE business_id = $1`, businessID,
	).Scan(&d.ID, &d.BusinessID, &d.Values, &d.Mission, &d.Voice, &d.Audience)
	if db.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "scoring: query brand dna")
	}
	return &d, nil
}

// BusinessIDs returns every business with tracked keywords or a brand
// profile, for cross-business scoring runs.
func (s *PostgresStore) BusinessIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT business_id FROM keywords
		UNION
		SELECT business_id FROM brand_profiles`)
	if err != nil {
		return nil, eris.Wrap(err, "scoring: query business ids")
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "scoring: scan business id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpsertScore writes one score row per (business, period), overwriting any
// previous computation for the same period in place.
func (s *PostgresStore) UpsertScore(ctx context.Context, score model.BrandScore) (*model.BrandScore, error) {
	var out model.BrandScore
	err := s.pool.QueryRow(ctx, `
		INSERT INTO brand_scores (business_id, period_start, period_end,
			visibility_score, trust_score, consistency_score,
			visibility_breakdown, trust_breakdown, consistency_breakdown, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (business_id, period_start, period_end) DO UPDATE SET
			visibility_score      = EXCLUDED.visibility_score,
			trust_score           = EXCLUDED.trust_score,
			consistency_score     = EXCLUDED.consistency_score,
			visibility_breakdown  = EXCLUDED.visibility_breakdown,
			trust_breakdown       = EXCLUDED.trust_breakdown,
			consistency_breakdown = EXCLUDED.consistency_breakdown,
			computed_at           = EXCLUDED.computed_at
		RETURNING id, business_id, period_start, period_end,
			visibility_score, trust_score, consistency_score,
			visibility_breakdown, trust_breakdown, consistency_breakdown, computed_at`,
		score.BusinessID, score.PeriodStart, score.PeriodEnd,
		score.VisibilityScore, score.TrustScore, score.ConsistencyScore,
		score.VisibilityBreakdown, score.TrustBreakdown, score.ConsistencyBreakdown,
		score.ComputedAt,
	).Scan(
		&out.ID, &out.BusinessID, &out.PeriodStart, &out.PeriodEnd,
		&out.VisibilityScore, &out.TrustScore, &out.ConsistencyScore,
		&out.VisibilityBreakdown, &out.TrustBreakdown, &out.ConsistencyBreakdown,
		&out.ComputedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "scoring: upsert score for %s", score.BusinessID)
	}
	return &out, nil
}

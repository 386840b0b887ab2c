package rank

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/brandsight/rank-tracker/internal/db"
	"github.com/brandsight/rank-tracker/internal/model"
)

// PostgresStore implements Store using pgx.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// ActiveKeywords returns the business's active tracked keywords.
func (s *PostgresStore) ActiveKeywords(ctx context.Context, businessID uuid.UUID) ([]model.Keyword, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, business_id, location_id, keyword, is_active, tags, created_at
		FROM keywords
		WHERE business_id = $1 AND is_active
		ORDER BY created_at`, businessID)
	if err != nil {
		return nil, eris.Wrap(err, "rank: query active keywords")
	}
	defer rows.Close()

	var keywords []model.Keyword
	for rows.Next() {
		var k model.Keyword
		if err := rows.Scan(&k.ID, &k.BusinessID, &k.LocationID, &k.Keyword, &k.IsActive, &k.Tags, &k.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "rank: scan keyword")
		}
		keywords = append(keywords, k)
	}
	return keywords, rows.Err()
}

// LocationName resolves a location id to its display name.
func (s *PostgresStore) LocationName(ctx context.Context, locationID uuid.UUID) (string, error) {
	var name string
	err := s.pool.QueryRow(ctx,
		`SELECT name FROM locations WHERE id = $1`, locationID,
	).Scan(&name)
	if err != nil {
		return "", eris.Wrapf(err, "rank: resolve location %s", locationID)
	}
	return name, nil
}

// BusinessDomain returns the business's own domain derived from its brand
// profile website, or "" when no profile or website is set.
func (s *PostgresStore) BusinessDomain(ctx context.Context, businessID uuid.UUID) (string, error) {
	var websiteURL string
	err := s.pool.QueryRow(ctx,
		`SELECT website_url FROM brand_profiles WHERE business_id = $1`, businessID,
	).Scan(&websiteURL)
	if db.IsNoRows(err) {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrapf(err, "rank: query business domain %s", businessID)
	}
	return NormalizeDomain(websiteURL), nil
}

// BatchCreateRanks inserts keyword-rank snapshots in one bulk operation.
// Rows colliding on (keyword_id, device, captured_at) are left untouched, so
// a same-day re-run creates nothing new. Returns the number of rows created.
func (s *PostgresStore) BatchCreateRanks(ctx context.Context, ranks []model.KeywordRank) (int64, error) {
	if len(ranks) == 0 {
		return 0, nil
	}

	rows := make([][]any, len(ranks))
	for i, r := range ranks {
		rows[i] = []any{
			r.KeywordID, r.RankPosition, r.MapPackPosition,
			r.Features.FeaturedSnippet, r.Features.LocalPack, r.Features.KnowledgePanel,
			r.Features.ImagePack, r.Features.VideoCarousel, r.Features.PeopleAlsoAsk,
			r.RankingURL, r.SearchLocation, string(r.Device), r.CapturedAt,
		}
	}

	cfg := db.UpsertConfig{
		Table: "keyword_ranks",
		Columns: []string{
			"keyword_id", "rank_position", "map_pack_position",
			"featured_snippet", "local_pack", "knowledge_panel",
			"image_pack", "video_carousel", "people_also_ask",
			"ranking_url", "search_location", "device", "captured_at",
		},
		ConflictKeys: []string{"keyword_id", "device", "captured_at"},
		DoNothing:    true,
	}

	return db.BulkUpsert(ctx, s.pool, cfg, rows)
}

// CreateCompetitorRank inserts a single competitor-rank snapshot. A
// duplicate for the same (competitor, keyword, day) surfaces as a unique
// violation for the caller to classify.
func (s *PostgresStore) CreateCompetitorRank(ctx context.Context, cr model.CompetitorRank) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO competitor_ranks (competitor_id, keyword_id, rank_position, ranking_url, captured_at)
		VALUES ($1, $2, $3, $4, $5)`,
		cr.CompetitorID, cr.KeywordID, cr.RankPosition, cr.RankingURL, cr.CapturedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return err
		}
		return eris.Wrapf(err, "rank: create competitor rank for %s", cr.CompetitorID)
	}
	return nil
}

// RanksInWindow returns keyword-rank snapshots within [from, to], most
// recent first, optionally filtered by device.
func (s *PostgresStore) RanksInWindow(ctx context.Context, keywordID uuid.UUID, from, to time.Time, device model.Device) ([]model.KeywordRank, error) {
	query := `
		SELECT id, keyword_id, rank_position, map_pack_position,
			featured_snippet, local_pack, knowledge_panel,
			image_pack, video_carousel, people_also_ask,
			ranking_url, search_location, device, captured_at
		FROM keyword_ranks
		WHERE keyword_id = $1 AND captured_at >= $2 AND captured_at <= $3`
	args := []any{keywordID, from, to}

	if device != "" {
		query += fmt.Sprintf(" AND device = $%d", len(args)+1)
		args = append(args, string(device))
	}
	query += " ORDER BY captured_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "rank: query ranks in window")
	}
	defer rows.Close()

	return scanRanks(rows)
}

// CreateKeyword inserts a tracked keyword, ignoring duplicates of
// (business, keyword, location).
func (s *PostgresStore) CreateKeyword(ctx context.Context, kw model.Keyword) error {
	tags := kw.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO keywords (business_id, location_id, keyword, is_active, tags)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING`,
		kw.BusinessID, kw.LocationID, kw.Keyword, kw.IsActive, tags,
	)
	if err != nil {
		return eris.Wrapf(err, "rank: create keyword %q", kw.Keyword)
	}
	return nil
}

// RankHistory returns a business's rank observations joined with keyword
// text, ordered for report export.
func (s *PostgresStore) RankHistory(ctx context.Context, businessID uuid.UUID, from, to time.Time) ([]HistoryRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT k.keyword, r.device, r.rank_position, r.map_pack_position, r.captured_at
		FROM keyword_ranks r
		JOIN keywords k ON k.id = r.keyword_id
		WHERE k.business_id = $1 AND r.captured_at >= $2 AND r.captured_at <= $3
		ORDER BY k.keyword, r.device, r.captured_at`,
		businessID, from, to)
	if err != nil {
		return nil, eris.Wrap(err, "rank: query rank history")
	}
	defer rows.Close()

	var history []HistoryRow
	for rows.Next() {
		var h HistoryRow
		if err := rows.Scan(&h.Keyword, &h.Device, &h.RankPosition, &h.MapPackPosition, &h.CapturedAt); err != nil {
			return nil, eris.Wrap(err, "rank: scan history row")
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func scanRanks(rows pgx.Rows) ([]model.KeywordRank, error) {
	var ranks []model.KeywordRank
	for rows.Next() {
		var r model.KeywordRank
		if err := rows.Scan(
			&r.ID, &r.KeywordID, &r.RankPosition, &r.MapPackPosition,
			&r.Features.FeaturedSnippet, &r.Features.LocalPack, &r.Features.KnowledgePanel,
			&r.Features.ImagePack, &r.Features.VideoCarousel, &r.Features.PeopleAlsoAsk,
			&r.RankingURL, &r.SearchLocation, &r.Device, &r.CapturedAt,
		); err != nil {
			return nil, eris.Wrap(err, "rank: scan keyword rank")
		}
		ranks = append(ranks, r)
	}
	return ranks, rows.Err()
}

// NormalizeDomain extracts a bare lowercase hostname from a URL or raw
// domain, stripping any www prefix.
func NormalizeDomain(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "://") {
		if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
			raw = u.Hostname()
		}
	} else if i := strings.IndexByte(raw, '/'); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimPrefix(raw, "www.")
}

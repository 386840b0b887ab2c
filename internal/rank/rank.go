// Package rank implements daily SERP ingestion and rank-change computation
// for tracked keywords.
package rank

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/brandsight/rank-tracker/internal/model"
)

// Store defines persistence operations for the rank subsystem.
type Store interface {
	ActiveKeywords(ctx context.Context, businessID uuid.UUID) ([]model.Keyword, error)
	LocationName(ctx context.Context, locationID uuid.UUID) (string, error)
	BusinessDomain(ctx context.Context, businessID uuid.UUID) (string, error)
	BatchCreateRanks(ctx context.Context, ranks []model.KeywordRank) (int64, error)
	CreateCompetitorRank(ctx context.Context, cr model.CompetitorRank) error
	RanksInWindow(ctx context.Context, keywordID uuid.UUID, from, to time.Time, device model.Device) ([]model.KeywordRank, error)
	CreateKeyword(ctx context.Context, kw model.Keyword) error
	RankHistory(ctx context.Context, businessID uuid.UUID, from, to time.Time) ([]HistoryRow, error)
}

// Registry is the slice of the competitor registry ingestion depends on.
type Registry interface {
	UpsertByDomain(ctx context.Context, businessID uuid.UUID, domain string, patch model.CompetitorPatch) (*model.Competitor, error)
}

// Conflict records one competitor-rank write skipped because a snapshot for
// the same (competitor, keyword, day) already existed.
type Conflict struct {
	CompetitorID uuid.UUID `json:"competitor_id"`
	KeywordID    uuid.UUID `json:"keyword_id"`
	Domain       string    `json:"domain"`
}

// PairFailure records a provider call that failed for one keyword/device
// pair. Failures are isolated: the rest of the run proceeds.
type PairFailure struct {
	KeywordID uuid.UUID    `json:"keyword_id"`
	Keyword   string       `json:"keyword"`
	Device    model.Device `json:"device"`
	Reason    string       `json:"reason"`
}

// IngestResult summarizes one ingestion run. Skipped and Failed surface
// partial outcomes as data rather than buried log lines.
type IngestResult struct {
	RanksCreated    int64         `json:"ranks_created"`
	CompetitorsSeen int           `json:"competitors_seen"`
	Skipped         []Conflict    `json:"skipped,omitempty"`
	Failed          []PairFailure `json:"failed,omitempty"`
}

// HistoryRow is one keyword-rank observation joined with its keyword text,
// used by report exports.
type HistoryRow struct {
	Keyword         string       `json:"keyword"`
	Device          model.Device `json:"device"`
	RankPosition    *int         `json:"rank_position,omitempty"`
	MapPackPosition *int         `json:"map_pack_position,omitempty"`
	CapturedAt      time.Time    `json:"captured_at"`
}

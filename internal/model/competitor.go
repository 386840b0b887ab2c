package model

import (
	"time"

	"github.com/google/uuid"
)

// Competitor is a domain observed competing for a business's keywords.
// Identity is (BusinessID, Domain); the rolling metrics are nil until the
// registry has computed them at least once.
type Competitor struct {
	ID              uuid.UUID  `json:"id"`
	BusinessID      uuid.UUID  `json:"business_id"`
	Domain          string     `json:"domain"`
	Name            string     `json:"name,omitempty"`
	AvgRank         *float64   `json:"avg_rank,omitempty"`
	VisibilityScore *float64   `json:"visibility_score,omitempty"`
	ReviewCount     *int       `json:"review_count,omitempty"`
	Rating          *float64   `json:"rating,omitempty"`
	GBPCompleteness *float64   `json:"gbp_completeness,omitempty"`
	LastSeenAt      *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CompetitorRank is an immutable per-capture record of a competitor's
// observed position for one keyword on one day. A duplicate for the same
// (competitor, keyword, day) is a conflict, not a silent overwrite.
type CompetitorRank struct {
	ID           uuid.UUID `json:"id"`
	CompetitorID uuid.UUID `json:"competitor_id"`
	KeywordID    uuid.UUID `json:"keyword_id"`
	RankPosition int       `json:"rank_position"`
	RankingURL   string    `json:"ranking_url,omitempty"`
	CapturedAt   time.Time `json:"captured_at"`
}

// CompetitorPatch carries optional field updates for an upsert. Nil fields
// leave the stored value untouched.
type CompetitorPatch struct {
	Name            *string
	AvgRank         *float64
	VisibilityScore *float64
	ReviewCount     *int
	Rating          *float64
	GBPCompleteness *float64
	LastSeenAt      *time.Time
}

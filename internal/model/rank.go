package model

import (
	"time"

	"github.com/google/uuid"
)

// SERPFeatures flags which special result blocks appeared alongside the
// organic listing for a capture.
type SERPFeatures struct {
	FeaturedSnippet bool `json:"featured_snippet"`
	LocalPack       bool `json:"local_pack"`
	KnowledgePanel  bool `json:"knowledge_panel"`
	ImagePack       bool `json:"image_pack"`
	VideoCarousel   bool `json:"video_carousel"`
	PeopleAlsoAsk   bool `json:"people_also_ask"`
}

// KeywordRank is an immutable daily snapshot of one keyword's own ranking for
// one device class. CapturedAt is always truncated to a day boundary so that
// (KeywordID, Device, CapturedAt) dedups re-runs within the same day.
type KeywordRank struct {
	ID              uuid.UUID    `json:"id"`
	KeywordID       uuid.UUID    `json:"keyword_id"`
	RankPosition    *int         `json:"rank_position,omitempty"`
	MapPackPosition *int         `json:"map_pack_position,omitempty"`
	Features        SERPFeatures `json:"features"`
	RankingURL      *string      `json:"ranking_url,omitempty"`
	SearchLocation  *string      `json:"search_location,omitempty"`
	Device          Device       `json:"device"`
	CapturedAt      time.Time    `json:"captured_at"`
}

// RankPeriod selects the comparison window for rank-change computation.
type RankPeriod string

const (
	PeriodDaily  RankPeriod = "daily"
	PeriodWeekly RankPeriod = "weekly"
)

// Offset returns the baseline lookback for the period.
func (p RankPeriod) Offset() (days int, ok bool) {
	switch p {
	case PeriodDaily:
		return 1, true
	case PeriodWeekly:
		return 7, true
	}
	return 0, false
}

// SignificanceThreshold is the minimum absolute delta considered a real move
// rather than noise: a large single-day jump is a spike, while a smaller move
// over a week is within normal churn.
func (p RankPeriod) SignificanceThreshold() int {
	if p == PeriodWeekly {
		return 10
	}
	return 5
}

// RankDirection labels the sign of a rank delta.
type RankDirection string

const (
	DirectionUp   RankDirection = "up"
	DirectionDown RankDirection = "down"
	DirectionNone RankDirection = "none"
)

// RankChange is the outcome of comparing the latest snapshot to a baseline.
// Delta is nil when either endpoint was not ranked, or no data exists.
type RankChange struct {
	KeywordID   uuid.UUID     `json:"keyword_id"`
	Period      RankPeriod    `json:"period"`
	Delta       *int          `json:"delta"`
	Direction   RankDirection `json:"direction"`
	Significant bool          `json:"significant"`
}

// TruncateToDay strips the time-of-day component in UTC. All capturedAt
// values pass through here before persistence.
func TruncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// ScoreBreakdown maps sub-signal names to their 0-100 sub-scores. It is
// persisted as free-form JSONB so sub-signals can evolve without a score
// table migration.
type ScoreBreakdown map[string]float64

// BrandScore is one computed score snapshot per (business, period).
// Recomputing the same period overwrites the row in place.
type BrandScore struct {
	ID                   uuid.UUID      `json:"id"`
	BusinessID           uuid.UUID      `json:"business_id"`
	PeriodStart          time.Time      `json:"period_start"`
	PeriodEnd            time.Time      `json:"period_end"`
	VisibilityScore      int            `json:"visibility_score"`
	TrustScore           int            `json:"trust_score"`
	ConsistencyScore     int            `json:"consistency_score"`
	VisibilityBreakdown  ScoreBreakdown `json:"visibility_breakdown"`
	TrustBreakdown       ScoreBreakdown `json:"trust_breakdown"`
	ConsistencyBreakdown ScoreBreakdown `json:"consistency_breakdown"`
	ComputedAt           time.Time      `json:"computed_at"`
}

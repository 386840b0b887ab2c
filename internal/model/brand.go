package model

import (
	"time"

	"github.com/google/uuid"
)

// ProfileStatus tracks how far a brand profile has been filled in.
type ProfileStatus string

const (
	ProfileStatusDraft     ProfileStatus = "draft"
	ProfileStatusCompleted ProfileStatus = "completed"
)

// BrandProfile is the read-only brand identity record consumed by the social
// presence sub-score.
type BrandProfile struct {
	ID         uuid.UUID     `json:"id"`
	BusinessID uuid.UUID     `json:"business_id"`
	WebsiteURL string        `json:"website_url,omitempty"`
	Status     ProfileStatus `json:"status"`
}

// Review is a customer review consumed by the reputation sub-score.
type Review struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
	Rating     float64   `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
}

// BrandDNA holds a business's brand identity elements. Each non-empty
// element contributes to the consistency sub-score.
type BrandDNA struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
	Values     []string  `json:"values,omitempty"`
	Mission    string    `json:"mission,omitempty"`
	Voice      string    `json:"voice,omitempty"`
	Audience   string    `json:"audience,omitempty"`
}

// VisibilityMetric is an externally-maintained local visibility measurement.
// Only the most recent row within the scoring window is consulted.
type VisibilityMetric struct {
	ID                uuid.UUID `json:"id"`
	BusinessID        uuid.UUID `json:"business_id"`
	MapPackVisibility float64   `json:"map_pack_visibility"`
	RecordedAt        time.Time `json:"recorded_at"`
}

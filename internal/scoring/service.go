package scoring

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brandsight/rank-tracker/internal/model"
)

// signalWindow is the lookback for rank and visibility signals.
const signalWindow = 30 * 24 * time.Hour

// Service computes and persists brand scores.
type Service struct {
	store   Store
	weights Weights
	now     func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the scoring clock.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service. The weights are validated up front.
func NewService(store Store, weights Weights, opts ...ServiceOption) (*Service, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	s := &Service{store: store, weights: weights, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// subScores holds one computation pass over a business's stored signals.
type subScores struct {
	Search      int
	Local       int
	Social      int
	Reputation  int
	Consistency int
	DNA         *model.BrandDNA
}

func (s *Service) compute(ctx context.Context, businessID uuid.UUID) (*subScores, error) {
	since := s.now().UTC().Add(-signalWindow)

	ranks, err := s.store.RecentKeywordRanks(ctx, businessID, since)
	if err != nil {
		return nil, err
	}
	visibility, err := s.store.LatestMapPackVisibility(ctx, businessID, since)
	if err != nil {
		return nil, err
	}
	profile, err := s.store.Profile(ctx, businessID)
	if err != nil {
		return nil, err
	}
	avgRating, reviewCount, err := s.store.AverageRating(ctx, businessID)
	if err != nil {
		return nil, err
	}
	dna, err := s.store.DNA(ctx, businessID)
	if err != nil {
		return nil, err
	}

	return &subScores{
		Search:      searchScore(ranks),
		Local:       localScore(visibility),
		Social:      socialScore(profile),
		Reputation:  reputationScore(avgRating, reviewCount),
		Consistency: consistencyScore(dna),
		DNA:         dna,
	}, nil
}

func (s *Service) visibility(sub *subScores) int {
	weighted := s.weights.Search*float64(sub.Search) +
		s.weights.Local*float64(sub.Local) +
		s.weights.Social*float64(sub.Social) +
		s.weights.Reputation*float64(sub.Reputation) +
		s.weights.Consistency*float64(sub.Consistency)
	return clamp(int(math.Round(weighted)))
}

// ComputeVisibilityScore returns the weighted visibility score.
func (s *Service) ComputeVisibilityScore(ctx context.Context, businessID uuid.UUID) (int, error) {
	sub, err := s.compute(ctx, businessID)
	if err != nil {
		return 0, err
	}
	return s.visibility(sub), nil
}

// ComputeTrustScore returns the trust score.
func (s *Service) ComputeTrustScore(ctx context.Context, businessID uuid.UUID) (int, error) {
	sub, err := s.compute(ctx, businessID)
	if err != nil {
		return 0, err
	}
	return trustScore(sub.Reputation, sub.Consistency), nil
}

// SaveScores computes all dimensions in one pass and upserts the score row
// for the period. Recomputing the same period yields the same row, updated
// in place.
func (s *Service) SaveScores(ctx context.Context, businessID uuid.UUID, periodStart, periodEnd time.Time) (*model.BrandScore, error) {
	sub, err := s.compute(ctx, businessID)
	if err != nil {
		return nil, err
	}

	identityBonus := 0.0
	if sub.Consistency > 50 {
		identityBonus = 20
	}

	score := model.BrandScore{
		BusinessID:       businessID,
		PeriodStart:      model.TruncateToDay(periodStart),
		PeriodEnd:        model.TruncateToDay(periodEnd),
		VisibilityScore:  s.visibility(sub),
		TrustScore:       trustScore(sub.Reputation, sub.Consistency),
		ConsistencyScore: sub.Consistency,
		VisibilityBreakdown: model.ScoreBreakdown{
			"search":      float64(sub.Search),
			"local":       float64(sub.Local),
			"social":      float64(sub.Social),
			"reputation":  float64(sub.Reputation),
			"consistency": float64(sub.Consistency),
		},
		TrustBreakdown: model.ScoreBreakdown{
			"reputation_weighted": float64(sub.Reputation) * 0.8,
			"identity_bonus":      identityBonus,
		},
		ConsistencyBreakdown: consistencyBreakdown(sub.DNA),
		ComputedAt:           s.now().UTC(),
	}

	saved, err := s.store.UpsertScore(ctx, score)
	if err != nil {
		return nil, err
	}

	zap.L().Info("brand scores saved",
		zap.String("business_id", businessID.String()),
		zap.Int("visibility", saved.VisibilityScore),
		zap.Int("trust", saved.TrustScore),
		zap.Int("consistency", saved.ConsistencyScore))
	return saved, nil
}

func consistencyBreakdown(dna *model.BrandDNA) model.ScoreBreakdown {
	b := model.ScoreBreakdown{"values": 0, "mission": 0, "voice": 0, "audience": 0}
	if dna == nil {
		return b
	}
	if len(dna.Values) > 0 {
		b["values"] = 25
	}
	if dna.Mission != "" {
		b["mission"] = 25
	}
	if dna.Voice != "" {
		b["voice"] = 25
	}
	if dna.Audience != "" {
		b["audience"] = 25
	}
	return b
}

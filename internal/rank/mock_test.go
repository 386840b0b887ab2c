package rank

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/brandsight/rank-tracker/internal/model"
	"github.com/brandsight/rank-tracker/pkg/serp"
)

type mockStore struct {
	activeKeywordsFn       func(ctx context.Context, businessID uuid.UUID) ([]model.Keyword, error)
	locationNameFn         func(ctx context.Context, locationID uuid.UUID) (string, error)
	businessDomainFn       func(ctx context.Context, businessID uuid.UUID) (string, error)
	batchCreateRanksFn     func(ctx context.Context, ranks []model.KeywordRank) (int64, error)
	createCompetitorRankFn func(ctx context.Context, cr model.CompetitorRank) error
	ranksInWindowFn        func(ctx context.Context, keywordID uuid.UUID, from, to time.Time, device model.Device) ([]model.KeywordRank, error)
	createKeywordFn        func(ctx context.Context, kw model.Keyword) error
	rankHistoryFn          func(ctx context.Context, businessID uuid.UUID, from, to time.Time) ([]HistoryRow, error)
}

func (m *mockStore) ActiveKeywords(ctx context.Context, businessID uuid.UUID) ([]model.Keyword, error) {
	return m.activeKeywordsFn(ctx, businessID)
}

func (m *mockStore) LocationName(ctx context.Context, locationID uuid.UUID) (string, error) {
	return m.locationNameFn(ctx, locationID)
}

func (m *mockStore) BusinessDomain(ctx context.Context, businessID uuid.UUID) (string, error) {
	return m.businessDomainFn(ctx, businessID)
}

func (m *mockStore) BatchCreateRanks(ctx context.Context, ranks []model.KeywordRank) (int64, error) {
	return m.batchCreateRanksFn(ctx, ranks)
}

func (m *mockStore) CreateCompetitorRank(ctx context.Context, cr model.CompetitorRank) error {
	return m.createCompetitorRankFn(ctx, cr)
}

func (m *mockStore) RanksInWindow(ctx context.Context, keywordID uuid.UUID, from, to time.Time, device model.Device) ([]model.KeywordRank, error) {
	return m.ranksInWindowFn(ctx, keywordID, from, to, device)
}

func (m *mockStore) CreateKeyword(ctx context.Context, kw model.Keyword) error {
	return m.createKeywordFn(ctx, kw)
}

func (m *mockStore) RankHistory(ctx context.Context, businessID uuid.UUID, from, to time.Time) ([]HistoryRow, error) {
	return m.rankHistoryFn(ctx, businessID, from, to)
}

type mockRegistry struct {
	upsertByDomainFn func(ctx context.Context, businessID uuid.UUID, domain string, patch model.CompetitorPatch) (*model.Competitor, error)
}

func (m *mockRegistry) UpsertByDomain(ctx context.Context, businessID uuid.UUID, domain string, patch model.CompetitorPatch) (*model.Competitor, error) {
	return m.upsertByDomainFn(ctx, businessID, domain, patch)
}

type mockSERPClient struct {
	fetchRankFn func(ctx context.Context, req serp.RankRequest) (*serp.RankResult, error)
}

func (m *mockSERPClient) FetchRank(ctx context.Context, req serp.RankRequest) (*serp.RankResult, error) {
	return m.fetchRankFn(ctx, req)
}

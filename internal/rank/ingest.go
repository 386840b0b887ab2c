package rank

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/brandsight/rank-tracker/internal/db"
	"github.com/brandsight/rank-tracker/internal/model"
	"github.com/brandsight/rank-tracker/pkg/serp"
)

// Ingestor captures one day of rank snapshots for a business.
type Ingestor struct {
	store    Store
	registry Registry
	client   serp.Client
	limiter  *rate.Limiter
	now      func() time.Time
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithRateLimit caps provider fetches at n per second.
func WithRateLimit(n float64) IngestorOption {
	return func(i *Ingestor) {
		i.limiter = rate.NewLimiter(rate.Limit(n), 1)
	}
}

// WithClock overrides the capture clock.
func WithClock(now func() time.Time) IngestorOption {
	return func(i *Ingestor) {
		i.now = now
	}
}

// NewIngestor creates an Ingestor.
func NewIngestor(store Store, registry Registry, client serp.Client, opts ...IngestorOption) *Ingestor {
	i := &Ingestor{
		store:    store,
		registry: registry,
		client:   client,
		limiter:  rate.NewLimiter(rate.Limit(5), 1),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// IngestDaily fetches today's SERP results for every active keyword and
// device pair and records keyword ranks, competitor registrations, and
// competitor ranks. Provider failures are isolated per pair; the remaining
// pairs still capture. Re-running within the same UTC day creates no
// duplicate snapshots.
func (i *Ingestor) IngestDaily(ctx context.Context, businessID uuid.UUID, devices []model.Device) (*IngestResult, error) {
	if len(devices) == 0 {
		devices = model.DefaultDevices
	}
	for _, d := range devices {
		if !d.Valid() {
			return nil, eris.Errorf("rank: invalid device %q", d)
		}
	}

	keywords, err := i.store.ActiveKeywords(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if len(keywords) == 0 {
		zap.L().Info("no active keywords to ingest", zap.String("business_id", businessID.String()))
		return &IngestResult{}, nil
	}

	selfDomain, err := i.store.BusinessDomain(ctx, businessID)
	if err != nil {
		return nil, err
	}

	capturedAt := model.TruncateToDay(i.now())
	result := &IngestResult{}
	seen := make(map[string]uuid.UUID)
	var pending []model.KeywordRank

	for _, kw := range keywords {
		location := ""
		if kw.LocationID != nil {
			location, err = i.store.LocationName(ctx, *kw.LocationID)
			if err != nil {
				return nil, err
			}
		}

		for _, device := range devices {
			if err := i.limiter.Wait(ctx); err != nil {
				return nil, eris.Wrap(err, "rank: rate limiter wait")
			}

			res, err := i.client.FetchRank(ctx, serp.RankRequest{
				Keyword:        kw.Keyword,
				SearchLocation: location,
				Device:         string(device),
				SelfDomain:     selfDomain,
			})
			if err != nil {
				zap.L().Warn("serp fetch failed",
					zap.String("keyword", kw.Keyword),
					zap.String("device", string(device)),
					zap.Error(err))
				result.Failed = append(result.Failed, PairFailure{
					KeywordID: kw.ID,
					Keyword:   kw.Keyword,
					Device:    device,
					Reason:    err.Error(),
				})
				continue
			}

			kr := model.KeywordRank{
				KeywordID:       kw.ID,
				RankPosition:    res.Position,
				MapPackPosition: res.MapPackPosition,
				Features: model.SERPFeatures{
					FeaturedSnippet: res.FeaturedSnippet,
					LocalPack:       res.LocalPack,
					KnowledgePanel:  res.KnowledgePanel,
					ImagePack:       res.ImagePack,
					VideoCarousel:   res.VideoCarousel,
					PeopleAlsoAsk:   res.PeopleAlsoAsk,
				},
				RankingURL: res.RankingURL,
				Device:     device,
				CapturedAt: capturedAt,
			}
			if location != "" {
				kr.SearchLocation = &location
			}
			pending = append(pending, kr)

			if err := i.recordCompetitors(ctx, businessID, kw.ID, selfDomain, res.Results, capturedAt, seen, result); err != nil {
				return nil, err
			}
		}
	}

	created, err := i.store.BatchCreateRanks(ctx, pending)
	if err != nil {
		return nil, err
	}
	result.RanksCreated = created
	result.CompetitorsSeen = len(seen)

	zap.L().Info("daily ingestion complete",
		zap.String("business_id", businessID.String()),
		zap.Int64("ranks_created", created),
		zap.Int("competitors_seen", len(seen)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

func (i *Ingestor) recordCompetitors(ctx context.Context, businessID, keywordID uuid.UUID, selfDomain string, entries []serp.ResultEntry, capturedAt time.Time, seen map[string]uuid.UUID, result *IngestResult) error {
	for _, entry := range entries {
		domain := NormalizeDomain(entry.Domain)
		if domain == "" || domain == selfDomain {
			continue
		}

		competitorID, ok := seen[domain]
		if !ok {
			lastSeen := capturedAt
			comp, err := i.registry.UpsertByDomain(ctx, businessID, domain, model.CompetitorPatch{
				Name:       displayName(entry.Title, domain),
				LastSeenAt: &lastSeen,
			})
			if err != nil {
				return err
			}
			competitorID = comp.ID
			seen[domain] = competitorID
		}

		cr := model.CompetitorRank{
			CompetitorID: competitorID,
			KeywordID:    keywordID,
			RankPosition: entry.Position,
			RankingURL:   entry.URL,
			CapturedAt:   capturedAt,
		}
		if err := i.store.CreateCompetitorRank(ctx, cr); err != nil {
			if db.IsUniqueViolation(err) {
				result.Skipped = append(result.Skipped, Conflict{
					CompetitorID: competitorID,
					KeywordID:    keywordID,
					Domain:       domain,
				})
				continue
			}
			return err
		}
	}
	return nil
}

// displayName derives a competitor display name from a result title,
// falling back to a titled form of the domain's first label. The Caser is
// created per call; a shared one is not safe for concurrent use.
func displayName(title, domain string) *string {
	name := title
	for _, sep := range []string{" | ", " - ", " – "} {
		if i := strings.Index(name, sep); i >= 0 {
			name = name[:i]
		}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		label, _, _ := strings.Cut(domain, ".")
		name = cases.Title(language.English).String(strings.ReplaceAll(label, "-", " "))
	}
	return &name
}

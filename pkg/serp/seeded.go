package serp

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"time"
)

// SeededClient is a deterministic stand-in for a live SERP data source.
// Every value is derived from a PRNG seeded on (keyword, location, device,
// calendar day), so repeated calls within one day return identical results
// while the SERP drifts from day to day. Swap in NewHTTPClient for
// production captures.
type SeededClient struct {
	now  func() time.Time
	base uint64
}

// SeededOption configures a SeededClient.
type SeededOption func(*SeededClient)

// WithNow overrides the clock, pinning the "calendar day" used for seeding.
func WithNow(now func() time.Time) SeededOption {
	return func(c *SeededClient) {
		c.now = now
	}
}

// WithBaseSeed mixes an extra seed into every tuple, letting two environments
// share code but produce disjoint synthetic SERPs.
func WithBaseSeed(seed uint64) SeededOption {
	return func(c *SeededClient) {
		c.base = seed
	}
}

// NewSeededClient creates a deterministic SERP client.
func NewSeededClient(opts ...SeededOption) *SeededClient {
	c := &SeededClient{now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// competitorStems seed the synthetic domains appearing on generated SERPs.
// The subset and order for a given keyword is stable within a day.
var competitorStems = []string{
	"apex", "summit", "prime", "metro", "elite", "cornerstone", "beacon",
	"horizon", "pinnacle", "anchor", "cascade", "sterling", "vanguard",
	"heritage", "landmark", "crestview", "bluebird", "northstar",
}

func (c *SeededClient) FetchRank(_ context.Context, req RankRequest) (*RankResult, error) {
	day := c.now().UTC().Format("2006-01-02")
	seed := tupleSeed(req.Keyword, req.SearchLocation, req.Device, day) ^ c.base
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	slug := slugify(req.Keyword)
	resultCount := 10 + rng.IntN(MaxResults-10+1)

	// Decide the business's own position first: roughly one capture in five
	// falls outside the observed result set.
	var ownPos *int
	if rng.IntN(5) != 0 {
		p := 1 + rng.IntN(resultCount)
		ownPos = &p
	}

	results := make([]ResultEntry, 0, resultCount)
	stemOffset := rng.IntN(len(competitorStems))
	for pos := 1; pos <= resultCount; pos++ {
		if ownPos != nil && pos == *ownPos {
			results = append(results, ResultEntry{
				Domain:   req.SelfDomain,
				URL:      fmt.Sprintf("https://%s/%s", req.SelfDomain, slug),
				Title:    req.Keyword,
				Position: pos,
			})
			continue
		}
		stem := competitorStems[(stemOffset+pos)%len(competitorStems)]
		domain := fmt.Sprintf("%s-%s.com", stem, slug)
		results = append(results, ResultEntry{
			Domain:   domain,
			URL:      fmt.Sprintf("https://%s/", domain),
			Title:    fmt.Sprintf("%s %s", strings.ToUpper(stem[:1])+stem[1:], req.Keyword),
			Position: pos,
		})
	}

	res := &RankResult{
		Position:        ownPos,
		FeaturedSnippet: rng.IntN(10) == 0,
		LocalPack:       req.SearchLocation != "" && rng.IntN(3) == 0,
		KnowledgePanel:  rng.IntN(8) == 0,
		ImagePack:       rng.IntN(4) == 0,
		VideoCarousel:   rng.IntN(6) == 0,
		PeopleAlsoAsk:   rng.IntN(2) == 0,
		Results:         results,
	}

	// Map pack only shows for geo-intent queries.
	if req.SearchLocation != "" && rng.IntN(2) == 0 {
		mp := 1 + rng.IntN(3)
		res.MapPackPosition = &mp
	}

	if ownPos != nil {
		url := fmt.Sprintf("https://%s/%s", req.SelfDomain, slug)
		res.RankingURL = &url
	}

	return res, nil
}

// tupleSeed hashes the capture tuple plus day into a PRNG seed.
func tupleSeed(parts ...string) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p)) //nolint:errcheck
		h.Write([]byte{0}) //nolint:errcheck
	}
	return h.Sum64()
}

// slugify lowercases a keyword and joins its words with hyphens.
func slugify(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return "search"
	}
	return strings.Join(fields, "-")
}

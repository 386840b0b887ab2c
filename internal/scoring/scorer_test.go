package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brandsight/rank-tracker/internal/model"
)

func intPtr(n int) *int { return &n }

func TestKeywordScore(t *testing.T) {
	tests := []struct {
		name string
		rank model.KeywordRank
		want float64
	}{
		{"top three", model.KeywordRank{RankPosition: intPtr(1)}, 40},
		{"first page", model.KeywordRank{RankPosition: intPtr(7)}, 30},
		{"second page", model.KeywordRank{RankPosition: intPtr(15)}, 20},
		{"deep", model.KeywordRank{RankPosition: intPtr(45)}, 10},
		{"beyond fifty", model.KeywordRank{RankPosition: intPtr(80)}, 0},
		{"unranked", model.KeywordRank{}, 0},
		{
			"features add on top of position",
			model.KeywordRank{
				RankPosition: intPtr(2),
				Features:     model.SERPFeatures{FeaturedSnippet: true, LocalPack: true},
			},
			65,
		},
		{
			"features without ranking still score",
			model.KeywordRank{Features: model.SERPFeatures{PeopleAlsoAsk: true}},
			5,
		},
		{
			"every feature present",
			model.KeywordRank{
				RankPosition: intPtr(1),
				Features: model.SERPFeatures{
					FeaturedSnippet: true, LocalPack: true, KnowledgePanel: true,
					ImagePack: true, VideoCarousel: true, PeopleAlsoAsk: true,
				},
			},
			90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keywordScore(tt.rank))
		})
	}
}

func TestSearchScore(t *testing.T) {
	t.Run("averages over scored keywords", func(t *testing.T) {
		ranks := []model.KeywordRank{
			{RankPosition: intPtr(1)},  // 40
			{RankPosition: intPtr(15)}, // 20
		}
		assert.Equal(t, 30, searchScore(ranks))
	})

	t.Run("no data scores zero", func(t *testing.T) {
		assert.Equal(t, 0, searchScore(nil))
	})
}

func TestLocalScore(t *testing.T) {
	v := 72.4
	assert.Equal(t, 72, localScore(&v))

	over := 130.0
	assert.Equal(t, 100, localScore(&over))

	assert.Equal(t, 0, localScore(nil))
}

func TestSocialScore(t *testing.T) {
	assert.Equal(t, 0, socialScore(nil))
	assert.Equal(t, 50, socialScore(&model.BrandProfile{}))
	assert.Equal(t, 60, socialScore(&model.BrandProfile{WebsiteURL: "https://acme.com"}))
	assert.Equal(t, 100, socialScore(&model.BrandProfile{
		WebsiteURL: "https://acme.com",
		Status:     model.ProfileStatusCompleted,
	}))
}

func TestReputationScore(t *testing.T) {
	assert.Equal(t, 0, reputationScore(0, 0))
	assert.Equal(t, 88, reputationScore(4.4, 12))
	assert.Equal(t, 100, reputationScore(5, 3))
}

func TestConsistencyScore(t *testing.T) {
	assert.Equal(t, 0, consistencyScore(nil))
	assert.Equal(t, 0, consistencyScore(&model.BrandDNA{}))
	assert.Equal(t, 50, consistencyScore(&model.BrandDNA{
		Values:  []string{"craft"},
		Mission: "fix every leak",
	}))
	assert.Equal(t, 100, consistencyScore(&model.BrandDNA{
		Values:   []string{"craft"},
		Mission:  "fix every leak",
		Voice:    "plainspoken",
		Audience: "homeowners",
	}))
}

func TestTrustScore(t *testing.T) {
	// zero reviews, zero brand identity
	assert.Equal(t, 0, trustScore(0, 0))

	// reputation alone, no identity bonus
	assert.Equal(t, 72, trustScore(90, 50))

	// identity bonus kicks in above 50
	assert.Equal(t, 92, trustScore(90, 75))

	// bounded at 100
	assert.Equal(t, 100, trustScore(100, 100))
}

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())

	bad := Weights{Search: 0.5, Local: 0.5, Social: 0.5}
	err := bad.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 1")

	negative := Weights{Search: -0.1, Local: 0.5, Social: 0.2, Reputation: 0.3, Consistency: 0.1}
	err = negative.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "must be >= 0")
}

package scoring

import (
	"math"

	"github.com/brandsight/rank-tracker/internal/model"
)

// keywordScore scores one keyword's most recent capture: a banded position
// score plus additive SERP-feature bonuses, capped at 100.
func keywordScore(r model.KeywordRank) float64 {
	var score float64
	if r.RankPosition != nil {
		switch pos := *r.RankPosition; {
		case pos <= 3:
			score = 40
		case pos <= 10:
			score = 30
		case pos <= 20:
			score = 20
		case pos <= 50:
			score = 10
		}
	}

	if r.Features.FeaturedSnippet {
		score += 15
	}
	if r.Features.LocalPack {
		score += 10
	}
	if r.Features.KnowledgePanel {
		score += 10
	}
	if r.Features.ImagePack {
		score += 5
	}
	if r.Features.VideoCarousel {
		score += 5
	}
	if r.Features.PeopleAlsoAsk {
		score += 5
	}

	return math.Min(score, 100)
}

// searchScore averages keywordScore across the keywords that have a recent
// capture. Keywords without data are excluded, not counted as zero.
func searchScore(ranks []model.KeywordRank) int {
	if len(ranks) == 0 {
		return 0
	}
	var total float64
	for _, r := range ranks {
		total += keywordScore(r)
	}
	return clamp(int(math.Round(total / float64(len(ranks)))))
}

// localScore is the most recent map-pack visibility measurement, capped.
func localScore(mapPackVisibility *float64) int {
	if mapPackVisibility == nil {
		return 0
	}
	return clamp(int(math.Round(math.Min(*mapPackVisibility, 100))))
}

// socialScore is a coarse presence heuristic over the brand profile.
func socialScore(profile *model.BrandProfile) int {
	if profile == nil {
		return 0
	}
	score := 50
	if profile.WebsiteURL != "" {
		score += 10
	}
	if profile.Status == model.ProfileStatusCompleted {
		score += 40
	}
	return clamp(score)
}

// reputationScore maps the average review rating onto 0-100.
func reputationScore(avgRating float64, reviewCount int) int {
	if reviewCount == 0 {
		return 0
	}
	return clamp(int(math.Round(avgRating / 5 * 100)))
}

// consistencyScore grants 25 points for each present brand identity element.
func consistencyScore(dna *model.BrandDNA) int {
	if dna == nil {
		return 0
	}
	score := 0
	if len(dna.Values) > 0 {
		score += 25
	}
	if dna.Mission != "" {
		score += 25
	}
	if dna.Voice != "" {
		score += 25
	}
	if dna.Audience != "" {
		score += 25
	}
	return score
}

// trustScore rides mostly on reputation, with a flat bonus when a coherent
// brand identity exists.
func trustScore(reputation, consistency int) int {
	bonus := 0.0
	if consistency > 50 {
		bonus = 20
	}
	return clamp(int(math.Round(float64(reputation)*0.8 + bonus)))
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

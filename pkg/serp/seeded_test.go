package serp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSeededClientDeterministicWithinDay(t *testing.T) {
	day := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	req := RankRequest{
		Keyword:        "emergency plumber",
		SearchLocation: "Austin, TX",
		Device:         "desktop",
		SelfDomain:     "acmeplumbing.com",
	}

	morning := NewSeededClient(WithNow(clockAt(day)))
	evening := NewSeededClient(WithNow(clockAt(day.Add(13 * time.Hour))))

	first, err := morning.FetchRank(context.Background(), req)
	require.NoError(t, err)
	second, err := evening.FetchRank(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSeededClientDriftsAcrossDays(t *testing.T) {
	req := RankRequest{
		Keyword:    "emergency plumber",
		Device:     "desktop",
		SelfDomain: "acmeplumbing.com",
	}

	today := NewSeededClient(WithNow(clockAt(time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC))))
	tomorrow := NewSeededClient(WithNow(clockAt(time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC))))

	first, err := today.FetchRank(context.Background(), req)
	require.NoError(t, err)
	second, err := tomorrow.FetchRank(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSeededClientVariesByTuple(t *testing.T) {
	client := NewSeededClient(WithNow(clockAt(time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC))))
	base := RankRequest{Keyword: "emergency plumber", Device: "desktop", SelfDomain: "acmeplumbing.com"}

	baseline, err := client.FetchRank(context.Background(), base)
	require.NoError(t, err)

	mobile := base
	mobile.Device = "mobile"
	other, err := client.FetchRank(context.Background(), mobile)
	require.NoError(t, err)

	assert.NotEqual(t, baseline, other)
}

func TestSeededClientResultShape(t *testing.T) {
	client := NewSeededClient(WithNow(clockAt(time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC))))
	req := RankRequest{
		Keyword:        "emergency plumber",
		SearchLocation: "Austin, TX",
		Device:         "desktop",
		SelfDomain:     "acmeplumbing.com",
	}

	res, err := client.FetchRank(context.Background(), req)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(res.Results), 10)
	assert.LessOrEqual(t, len(res.Results), MaxResults)
	for i, entry := range res.Results {
		assert.Equal(t, i+1, entry.Position)
		assert.NotEmpty(t, entry.Domain)
		assert.NotEmpty(t, entry.URL)
	}

	if res.Position != nil {
		assert.Equal(t, "acmeplumbing.com", res.Results[*res.Position-1].Domain)
		require.NotNil(t, res.RankingURL)
	} else {
		assert.Nil(t, res.RankingURL)
	}

	if res.MapPackPosition != nil {
		assert.GreaterOrEqual(t, *res.MapPackPosition, 1)
		assert.LessOrEqual(t, *res.MapPackPosition, 3)
	}
}

func TestSeededClientNoMapPackWithoutLocation(t *testing.T) {
	req := RankRequest{Keyword: "emergency plumber", Device: "desktop", SelfDomain: "acmeplumbing.com"}

	// Sample several days: the map pack must never appear without geo intent.
	for d := 0; d < 14; d++ {
		day := time.Date(2026, 8, 1+d, 9, 0, 0, 0, time.UTC)
		c := NewSeededClient(WithNow(clockAt(day)))
		res, err := c.FetchRank(context.Background(), req)
		require.NoError(t, err)
		assert.Nil(t, res.MapPackPosition)
		assert.False(t, res.LocalPack)
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "emergency-plumber", slugify("Emergency  Plumber"))
	assert.Equal(t, "search", slugify("  "))
}

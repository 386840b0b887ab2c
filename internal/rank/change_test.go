package rank

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandsight/rank-tracker/internal/model"
)

func TestComputeChange(t *testing.T) {
	keywordID := uuid.New()
	today := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	clock := fixedClock(time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC))

	snapshot := func(pos *int, day time.Time) model.KeywordRank {
		return model.KeywordRank{
			KeywordID:    keywordID,
			RankPosition: pos,
			Device:       model.DeviceDesktop,
			CapturedAt:   day,
		}
	}

	calcWith := func(ranks []model.KeywordRank) *ChangeCalculator {
		store := &mockStore{
			ranksInWindowFn: func(ctx context.Context, id uuid.UUID, from, to time.Time, device model.Device) ([]model.KeywordRank, error) {
				return ranks, nil
			},
		}
		return NewChangeCalculator(store, WithChangeClock(clock))
	}

	t.Run("improvement is positive delta", func(t *testing.T) {
		calc := calcWith([]model.KeywordRank{
			snapshot(intPtr(5), today),
			snapshot(intPtr(12), yesterday),
		})
		change, err := calc.ComputeChange(context.Background(), keywordID, model.PeriodDaily, model.DeviceDesktop)
		require.NoError(t, err)

		require.NotNil(t, change.Delta)
		assert.Equal(t, 7, *change.Delta)
		assert.Equal(t, model.DirectionUp, change.Direction)
		assert.True(t, change.Significant)
	})

	t.Run("decline is negative delta", func(t *testing.T) {
		calc := calcWith([]model.KeywordRank{
			snapshot(intPtr(9), today),
			snapshot(intPtr(6), yesterday),
		})
		change, err := calc.ComputeChange(context.Background(), keywordID, model.PeriodDaily, model.DeviceDesktop)
		require.NoError(t, err)

		require.NotNil(t, change.Delta)
		assert.Equal(t, -3, *change.Delta)
		assert.Equal(t, model.DirectionDown, change.Direction)
		assert.False(t, change.Significant)
	})

	t.Run("weekly threshold is higher", func(t *testing.T) {
		weekAgo := today.AddDate(0, 0, -7)
		calc := calcWith([]model.KeywordRank{
			snapshot(intPtr(4), today),
			snapshot(intPtr(11), weekAgo),
		})
		change, err := calc.ComputeChange(context.Background(), keywordID, model.PeriodWeekly, model.DeviceDesktop)
		require.NoError(t, err)

		// a 7-spot weekly move is within normal churn
		require.NotNil(t, change.Delta)
		assert.Equal(t, 7, *change.Delta)
		assert.False(t, change.Significant)
	})

	t.Run("exact baseline day preferred over window edge", func(t *testing.T) {
		weekAgo := today.AddDate(0, 0, -7)
		calc := calcWith([]model.KeywordRank{
			snapshot(intPtr(2), today),
			snapshot(intPtr(8), today.AddDate(0, 0, -3)),
			snapshot(intPtr(20), weekAgo),
		})
		change, err := calc.ComputeChange(context.Background(), keywordID, model.PeriodWeekly, model.DeviceDesktop)
		require.NoError(t, err)

		require.NotNil(t, change.Delta)
		assert.Equal(t, 18, *change.Delta)
		assert.True(t, change.Significant)
	})

	t.Run("missing baseline day falls back to oldest in window", func(t *testing.T) {
		calc := calcWith([]model.KeywordRank{
			snapshot(intPtr(3), today),
			snapshot(intPtr(10), today.AddDate(0, 0, -4)),
		})
		change, err := calc.ComputeChange(context.Background(), keywordID, model.PeriodWeekly, model.DeviceDesktop)
		require.NoError(t, err)

		require.NotNil(t, change.Delta)
		assert.Equal(t, 7, *change.Delta)
	})

	t.Run("unranked endpoint makes delta indeterminate", func(t *testing.T) {
		calc := calcWith([]model.KeywordRank{
			snapshot(nil, today),
			snapshot(intPtr(12), yesterday),
		})
		change, err := calc.ComputeChange(context.Background(), keywordID, model.PeriodDaily, model.DeviceDesktop)
		require.NoError(t, err)

		assert.Nil(t, change.Delta)
		assert.Equal(t, model.DirectionNone, change.Direction)
		assert.False(t, change.Significant)
	})

	t.Run("single snapshot yields no change", func(t *testing.T) {
		calc := calcWith([]model.KeywordRank{snapshot(intPtr(5), today)})
		change, err := calc.ComputeChange(context.Background(), keywordID, model.PeriodDaily, model.DeviceDesktop)
		require.NoError(t, err)

		assert.Nil(t, change.Delta)
		assert.Equal(t, model.DirectionNone, change.Direction)
	})

	t.Run("no data yields no change", func(t *testing.T) {
		calc := calcWith(nil)
		change, err := calc.ComputeChange(context.Background(), keywordID, model.PeriodDaily, model.DeviceDesktop)
		require.NoError(t, err)
		assert.Nil(t, change.Delta)
	})

	t.Run("rejects unsupported period", func(t *testing.T) {
		calc := calcWith(nil)
		_, err := calc.ComputeChange(context.Background(), keywordID, "monthly", model.DeviceDesktop)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported period")
	})

	t.Run("window bounds passed to store", func(t *testing.T) {
		var gotFrom, gotTo time.Time
		store := &mockStore{
			ranksInWindowFn: func(ctx context.Context, id uuid.UUID, from, to time.Time, device model.Device) ([]model.KeywordRank, error) {
				gotFrom, gotTo = from, to
				return nil, nil
			},
		}
		calc := NewChangeCalculator(store, WithChangeClock(clock))
		_, err := calc.ComputeChange(context.Background(), keywordID, model.PeriodWeekly, model.DeviceDesktop)
		require.NoError(t, err)
		assert.Equal(t, today.AddDate(0, 0, -7), gotFrom)
		assert.Equal(t, today, gotTo)
	})
}

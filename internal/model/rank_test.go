package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTruncateToDay(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	in := time.Date(2026, 8, 30, 22, 15, 42, 123, loc)

	got := TruncateToDay(in)

	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, got, TruncateToDay(got))
}

func TestRankPeriodOffset(t *testing.T) {
	days, ok := PeriodDaily.Offset()
	assert.True(t, ok)
	assert.Equal(t, 1, days)

	days, ok = PeriodWeekly.Offset()
	assert.True(t, ok)
	assert.Equal(t, 7, days)

	_, ok = RankPeriod("monthly").Offset()
	assert.False(t, ok)
}

func TestSignificanceThreshold(t *testing.T) {
	assert.Equal(t, 5, PeriodDaily.SignificanceThreshold())
	assert.Equal(t, 10, PeriodWeekly.SignificanceThreshold())
}

func TestDeviceValid(t *testing.T) {
	assert.True(t, DeviceDesktop.Valid())
	assert.True(t, DeviceMobile.Valid())
	assert.False(t, Device("tablet").Valid())
	assert.False(t, Device("").Valid())
}

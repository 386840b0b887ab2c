package rank

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/brandsight/rank-tracker/internal/model"
)

// ChangeCalculator computes rank movement over daily or weekly windows.
type ChangeCalculator struct {
	store Store
	now   func() time.Time
}

// NewChangeCalculator creates a ChangeCalculator.
func NewChangeCalculator(store Store, opts ...ChangeOption) *ChangeCalculator {
	c := &ChangeCalculator{store: store, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChangeOption configures a ChangeCalculator.
type ChangeOption func(*ChangeCalculator)

// WithChangeClock overrides the reference clock.
func WithChangeClock(now func() time.Time) ChangeOption {
	return func(c *ChangeCalculator) {
		c.now = now
	}
}

// ComputeChange compares the latest snapshot against the baseline one
// period earlier. The baseline is the snapshot captured exactly offset days
// before the latest; when that day has no record, the oldest snapshot in
// the window stands in. A lone snapshot yields a nil delta rather than a
// zero self-comparison. Delta is baseline minus latest, so moving from 12
// to 5 yields +7 and direction up. A nil position on either end makes the
// delta indeterminate.
func (c *ChangeCalculator) ComputeChange(ctx context.Context, keywordID uuid.UUID, period model.RankPeriod, device model.Device) (*model.RankChange, error) {
	offset, ok := period.Offset()
	if !ok {
		return nil, eris.Errorf("rank: unsupported period %q", period)
	}
	if device != "" && !device.Valid() {
		return nil, eris.Errorf("rank: invalid device %q", device)
	}

	to := model.TruncateToDay(c.now())
	from := to.AddDate(0, 0, -offset)

	ranks, err := c.store.RanksInWindow(ctx, keywordID, from, to, device)
	if err != nil {
		return nil, err
	}

	change := &model.RankChange{
		KeywordID: keywordID,
		Period:    period,
		Direction: model.DirectionNone,
	}
	if len(ranks) < 2 {
		return change, nil
	}

	latest := ranks[0]
	baseline := ranks[len(ranks)-1]
	baselineDay := latest.CapturedAt.AddDate(0, 0, -offset)
	for _, r := range ranks[1:] {
		if r.CapturedAt.Equal(baselineDay) {
			baseline = r
			break
		}
	}

	if latest.RankPosition == nil || baseline.RankPosition == nil {
		return change, nil
	}

	delta := *baseline.RankPosition - *latest.RankPosition
	change.Delta = &delta
	switch {
	case delta > 0:
		change.Direction = model.DirectionUp
	case delta < 0:
		change.Direction = model.DirectionDown
	}
	if abs(delta) >= period.SignificanceThreshold() {
		change.Significant = true
	}
	return change, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

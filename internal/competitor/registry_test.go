package competitor

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandsight/rank-tracker/internal/model"
)

var competitorCols = []string{
	"id", "business_id", "domain", "name", "avg_rank", "visibility_score",
	"review_count", "rating", "gbp_completeness", "last_seen_at", "created_at", "updated_at",
}

func TestRegistry_UpsertByDomain(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	registry := NewRegistry(mock)
	businessID := uuid.New()
	competitorID := uuid.New()
	name := "Rival Plumbing"
	seen := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO competitors`).
		WithArgs(businessID, "rivalplumbing.com", &name, (*float64)(nil), (*float64)(nil), (*int)(nil), (*float64)(nil), (*float64)(nil), &seen).
		WillReturnRows(pgxmock.NewRows(competitorCols).
			AddRow(competitorID, businessID, "rivalplumbing.com", name, nil, nil, nil, nil, nil, &seen, now, now))

	c, err := registry.UpsertByDomain(context.Background(), businessID, "rivalplumbing.com", model.CompetitorPatch{
		Name:       &name,
		LastSeenAt: &seen,
	})

	require.NoError(t, err)
	assert.Equal(t, competitorID, c.ID)
	assert.Equal(t, "rivalplumbing.com", c.Domain)
	assert.Equal(t, name, c.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistry_UpsertByDomain_EmptyDomain(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	registry := NewRegistry(mock)

	_, err = registry.UpsertByDomain(context.Background(), uuid.New(), "", model.CompetitorPatch{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "domain is required")
}

func TestRegistry_ListByBusiness(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	registry := NewRegistry(mock)
	businessID := uuid.New()
	now := time.Now().UTC()
	avg := 3.5

	mock.ExpectQuery(`SELECT (.+) FROM competitors`).
		WithArgs(businessID).
		WillReturnRows(pgxmock.NewRows(competitorCols).
			AddRow(uuid.New(), businessID, "rivalplumbing.com", "Rival Plumbing", &avg, nil, nil, nil, nil, nil, now, now).
			AddRow(uuid.New(), businessID, "pipeworks.com", "Pipeworks", nil, nil, nil, nil, nil, nil, now, now))

	competitors, err := registry.ListByBusiness(context.Background(), businessID)

	require.NoError(t, err)
	require.Len(t, competitors, 2)
	assert.Equal(t, "rivalplumbing.com", competitors[0].Domain)
	require.NotNil(t, competitors[0].AvgRank)
	assert.InDelta(t, 3.5, *competitors[0].AvgRank, 0.001)
	assert.Nil(t, competitors[1].AvgRank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistry_RefreshMetrics(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	registry := NewRegistry(mock, WithClock(func() time.Time { return now }))
	businessID := uuid.New()

	mock.ExpectExec(`UPDATE competitors c SET`).
		WithArgs(businessID, now.Add(-30*24*time.Hour)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 4))

	updated, err := registry.RefreshMetrics(context.Background(), businessID)

	require.NoError(t, err)
	assert.Equal(t, int64(4), updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistry_DeleteByBusiness(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	registry := NewRegistry(mock)
	businessID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM competitor_ranks`).
		WithArgs(businessID).
		WillReturnResult(pgxmock.NewResult("DELETE", 12))
	mock.ExpectExec(`DELETE FROM competitors`).
		WithArgs(businessID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectCommit()

	removed, err := registry.DeleteByBusiness(context.Background(), businessID)

	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

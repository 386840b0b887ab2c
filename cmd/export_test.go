package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/brandsight/rank-tracker/internal/model"
	"github.com/brandsight/rank-tracker/internal/rank"
)

func sampleHistory() []rank.HistoryRow {
	pos := 3
	return []rank.HistoryRow{
		{
			Keyword:      "emergency plumber",
			Device:       model.DeviceDesktop,
			RankPosition: &pos,
			CapturedAt:   time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			Keyword:    "drain cleaning",
			Device:     model.DeviceMobile,
			CapturedAt: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranks.csv")
	require.NoError(t, writeCSV(sampleHistory(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, []string{"emergency plumber", "desktop", "3", "", "2026-08-30"}, records[1])
	assert.Equal(t, []string{"drain cleaning", "mobile", "", "", "2026-08-30"}, records[2])
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranks.xlsx")
	require.NoError(t, writeXLSX(sampleHistory(), path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	assert.Equal(t, "Rank History", sheet.Name)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "keyword", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "emergency plumber", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "3", sheet.Rows[1].Cells[2].String())
}

func TestFmtIntCell(t *testing.T) {
	assert.Equal(t, "", fmtIntCell(nil))
	n := 12
	assert.Equal(t, "12", fmtIntCell(&n))
}

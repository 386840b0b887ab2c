package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandRegistration(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"ingest", "rank-change", "score", "migrate", "competitors", "keywords", "export", "serve"} {
		assert.True(t, names[want], "command %s not registered", want)
	}
}

func TestCompetitorsSubcommands(t *testing.T) {
	subs := map[string]bool{}
	for _, c := range competitorsCmd.Commands() {
		subs[c.Name()] = true
	}
	assert.True(t, subs["list"])
	assert.True(t, subs["reset"])
	assert.True(t, subs["refresh"])
}

func TestScoreFlagParsing(t *testing.T) {
	require.NoError(t, scoreCmd.Flags().Set("period-start", "2026-08-01"))
	require.NoError(t, scoreCmd.Flags().Set("period-end", "2026-08-31"))

	start, end, err := parsePeriod(scoreCmd)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-01", start.Format("2006-01-02"))
	assert.Equal(t, "2026-08-31", end.Format("2006-01-02"))

	require.NoError(t, scoreCmd.Flags().Set("period-end", "2026-07-01"))
	_, _, err = parsePeriod(scoreCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not precede")
}

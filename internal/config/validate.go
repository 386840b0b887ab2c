package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks the configuration required for the given run mode.
// Modes: "ingest", "score", "serve", "migrate", "db" (database access only).
func (c *Config) Validate(mode string) error {
	var errs []string

	requireDB := func() {
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	}

	switch mode {
	case "ingest":
		requireDB()
		if c.SERP.Provider == "http" && c.SERP.Key == "" {
			errs = append(errs, "serp.key is required for the http provider")
		}
		if c.Ingest.RatePerSecond <= 0 {
			errs = append(errs, "ingest.rate_per_second must be > 0")
		}
		for _, d := range c.Ingest.Devices {
			if d != "desktop" && d != "mobile" {
				errs = append(errs, fmt.Sprintf("ingest.devices: unknown device %q", d))
			}
		}
	case "score":
		requireDB()
		w := c.Scoring.Weights
		sum := w.Search + w.Local + w.Social + w.Reputation + w.Consistency
		if sum < 0.999 || sum > 1.001 {
			errs = append(errs, fmt.Sprintf("scoring.weights should sum to 1, got %.3f", sum))
		}
	case "serve":
		requireDB()
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "migrate", "db":
		requireDB()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed for %s: %s", mode, strings.Join(errs, "; "))
	}
	return nil
}

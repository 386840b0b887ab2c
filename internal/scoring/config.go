// Package scoring computes the composite brand-health dimensions for a
// business from its stored rank, profile, review, and identity data.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// Weights allocate the five visibility sub-scores. They must be
// non-negative and sum to 1.
type Weights struct {
	Search      float64 `mapstructure:"search"`
	Local       float64 `mapstructure:"local"`
	Social      float64 `mapstructure:"social"`
	Reputation  float64 `mapstructure:"reputation"`
	Consistency float64 `mapstructure:"consistency"`
}

// DefaultWeights returns the standard visibility weighting.
func DefaultWeights() Weights {
	return Weights{
		Search:      0.25,
		Local:       0.25,
		Social:      0.20,
		Reputation:  0.20,
		Consistency: 0.10,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Search + w.Local + w.Social + w.Reputation + w.Consistency
}

// Validate checks that the weights are internally consistent.
func (w Weights) Validate() error {
	var errs []string

	named := map[string]float64{
		"search":      w.Search,
		"local":       w.Local,
		"social":      w.Social,
		"reputation":  w.Reputation,
		"consistency": w.Consistency,
	}
	for name, v := range named {
		if v < 0 {
			errs = append(errs, fmt.Sprintf("%s weight must be >= 0", name))
		}
	}

	if sum := w.Sum(); math.Abs(sum-1) > 0.001 {
		errs = append(errs, fmt.Sprintf("weights should sum to 1, got %.3f", sum))
	}

	if len(errs) > 0 {
		return eris.Errorf("scoring: weight validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

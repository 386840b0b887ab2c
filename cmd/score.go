package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/brandsight/rank-tracker/internal/model"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute and save brand scores for a period",
	Long: `Computes the five visibility sub-scores (search, local, social,
reputation, consistency) from stored data, combines them into weighted
visibility and trust scores, and upserts one score row per
(business, period). Re-running the same period updates in place.

Examples:
  # Score one business for August
  score --business 550e8400-... --period-start 2026-08-01 --period-end 2026-08-31

  # Score every known business concurrently
  score --all --period-start 2026-08-01 --period-end 2026-08-31`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("business", "", "business id")
	f.Bool("all", false, "score every known business")
	f.String("period-start", "", "period start date, YYYY-MM-DD (required)")
	f.String("period-end", "", "period end date, YYYY-MM-DD (required)")
	f.Int("concurrency", 5, "concurrent businesses when scoring --all")
	_ = scoreCmd.MarkFlagRequired("period-start")
	_ = scoreCmd.MarkFlagRequired("period-end")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("score"); err != nil {
		return err
	}

	periodStart, periodEnd, err := parsePeriod(cmd)
	if err != nil {
		return err
	}

	all, _ := cmd.Flags().GetBool("all")
	rawBusiness, _ := cmd.Flags().GetString("business")
	if all == (rawBusiness != "") {
		return eris.New("exactly one of --business or --all is required")
	}

	env, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	if !all {
		businessID, err := uuid.Parse(rawBusiness)
		if err != nil {
			return eris.Wrapf(err, "invalid business id %q", rawBusiness)
		}
		score, err := env.Scoring.SaveScores(ctx, businessID, periodStart, periodEnd)
		if err != nil {
			return err
		}
		printScore(score)
		return nil
	}

	ids, err := env.ScoreStore.BusinessIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("no businesses to score")
		return nil
	}

	concurrency, _ := cmd.Flags().GetInt("concurrency")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, id := range ids {
		g.Go(func() error {
			score, err := env.Scoring.SaveScores(gctx, id, periodStart, periodEnd)
			if err != nil {
				return eris.Wrapf(err, "score business %s", id)
			}
			zap.L().Info("business scored",
				zap.String("business_id", id.String()),
				zap.Int("visibility", score.VisibilityScore),
				zap.Int("trust", score.TrustScore))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("scored %d businesses\n", len(ids))
	return nil
}

func parsePeriod(cmd *cobra.Command) (time.Time, time.Time, error) {
	rawStart, _ := cmd.Flags().GetString("period-start")
	rawEnd, _ := cmd.Flags().GetString("period-end")

	start, err := time.ParseInLocation("2006-01-02", rawStart, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, eris.Wrapf(err, "invalid period-start %q", rawStart)
	}
	end, err := time.ParseInLocation("2006-01-02", rawEnd, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, eris.Wrapf(err, "invalid period-end %q", rawEnd)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, eris.New("period-end must not precede period-start")
	}
	return start, end, nil
}

func printScore(score *model.BrandScore) {
	fmt.Printf("visibility:  %d\n", score.VisibilityScore)
	fmt.Printf("trust:       %d\n", score.TrustScore)
	fmt.Printf("consistency: %d\n", score.ConsistencyScore)
	for name, v := range score.VisibilityBreakdown {
		fmt.Printf("  %-12s %.0f\n", name, v)
	}
}

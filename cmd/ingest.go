package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brandsight/rank-tracker/internal/model"
	"github.com/brandsight/rank-tracker/internal/rank"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Capture today's rank snapshots for a business",
	Long: `Fetches search results for every active keyword and device pair,
records the business's own positions, and registers every other domain
seen in the results as a competitor. Safe to re-run within the same day.`,
	RunE: runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.String("business", "", "business id (required)")
	f.StringSlice("devices", nil, "devices to capture (default desktop,mobile)")
	f.Bool("refresh-metrics", false, "recompute competitor rolling metrics after the run")
	_ = ingestCmd.MarkFlagRequired("business")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("ingest"); err != nil {
		return err
	}

	businessID, err := parseBusinessID(cmd)
	if err != nil {
		return err
	}

	var devices []model.Device
	names, _ := cmd.Flags().GetStringSlice("devices")
	if len(names) == 0 {
		names = cfg.Ingest.Devices
	}
	for _, name := range names {
		devices = append(devices, model.Device(name))
	}

	env, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	ingestor := rank.NewIngestor(env.RankStore, env.Registry, env.SERP,
		rank.WithRateLimit(cfg.Ingest.RatePerSecond))

	result, err := ingestor.IngestDaily(ctx, businessID, devices)
	if err != nil {
		return err
	}

	fmt.Printf("ranks created:    %d\n", result.RanksCreated)
	fmt.Printf("competitors seen: %d\n", result.CompetitorsSeen)
	fmt.Printf("conflicts skipped: %d\n", len(result.Skipped))
	if len(result.Failed) > 0 {
		fmt.Printf("failed pairs:     %d\n", len(result.Failed))
		for _, f := range result.Failed {
			fmt.Printf("  %s (%s): %s\n", f.Keyword, f.Device, f.Reason)
		}
	}

	if refresh, _ := cmd.Flags().GetBool("refresh-metrics"); refresh {
		updated, err := env.Registry.RefreshMetrics(ctx, businessID)
		if err != nil {
			return err
		}
		zap.L().Info("competitor metrics refreshed", zap.Int64("updated", updated))
	}

	return nil
}

func parseBusinessID(cmd *cobra.Command) (uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString("business")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, eris.Wrapf(err, "invalid business id %q", raw)
	}
	return id, nil
}

package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/brandsight/rank-tracker/internal/model"
	"github.com/brandsight/rank-tracker/internal/rank"
)

var rankChangeCmd = &cobra.Command{
	Use:   "rank-change",
	Short: "Compute rank movement for a keyword",
	Long: `Compares the keyword's latest snapshot against the baseline one
period earlier (daily: 1 day, weekly: 7 days) and reports the delta,
direction, and whether the move clears the significance threshold.`,
	RunE: runRankChange,
}

func init() {
	f := rankChangeCmd.Flags()
	f.String("keyword", "", "keyword id (required)")
	f.String("period", "daily", "comparison period: daily or weekly")
	f.String("device", "", "restrict to one device: desktop or mobile")
	_ = rankChangeCmd.MarkFlagRequired("keyword")

	rootCmd.AddCommand(rankChangeCmd)
}

func runRankChange(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("db"); err != nil {
		return err
	}

	raw, _ := cmd.Flags().GetString("keyword")
	keywordID, err := uuid.Parse(raw)
	if err != nil {
		return eris.Wrapf(err, "invalid keyword id %q", raw)
	}

	periodName, _ := cmd.Flags().GetString("period")
	period := model.RankPeriod(periodName)
	deviceName, _ := cmd.Flags().GetString("device")

	env, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	calc := rank.NewChangeCalculator(env.RankStore)
	change, err := calc.ComputeChange(ctx, keywordID, period, model.Device(deviceName))
	if err != nil {
		return err
	}

	if change.Delta == nil {
		fmt.Printf("%s change: no comparable data\n", period)
		return nil
	}

	fmt.Printf("%s change: %+d (%s)", period, *change.Delta, change.Direction)
	if change.Significant {
		fmt.Print(" [significant]")
	}
	fmt.Println()
	return nil
}

package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brandsight/rank-tracker/internal/model"
)

var competitorsCmd = &cobra.Command{
	Use:   "competitors",
	Short: "Inspect and maintain the competitor registry",
}

var competitorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a business's observed competitors",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("db"); err != nil {
			return err
		}
		businessID, err := parseBusinessID(cmd)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		competitors, err := env.Registry.ListByBusiness(ctx, businessID)
		if err != nil {
			return err
		}
		if len(competitors) == 0 {
			fmt.Println("no competitors recorded")
			return nil
		}

		fmt.Printf("%-30s %-25s %8s %10s %12s\n", "DOMAIN", "NAME", "AVG RANK", "VISIBILITY", "LAST SEEN")
		for _, c := range competitors {
			fmt.Printf("%-30s %-25s %8s %10s %12s\n",
				c.Domain, c.Name,
				fmtFloat(c.AvgRank, "%.1f"),
				fmtFloat(c.VisibilityScore, "%.0f"),
				fmtLastSeen(&c))
		}
		return nil
	},
}

var competitorsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete a business's competitors and their rank history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("db"); err != nil {
			return err
		}
		businessID, err := parseBusinessID(cmd)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		removed, err := env.Registry.DeleteByBusiness(ctx, businessID)
		if err != nil {
			return err
		}
		fmt.Printf("removed %d competitors\n", removed)
		return nil
	},
}

var competitorsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Recompute rolling competitor metrics from recent observations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("db"); err != nil {
			return err
		}
		businessID, err := parseBusinessID(cmd)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		updated, err := env.Registry.RefreshMetrics(ctx, businessID)
		if err != nil {
			return err
		}
		fmt.Printf("updated metrics for %d competitors\n", updated)
		return nil
	},
}

func fmtFloat(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func fmtLastSeen(c *model.Competitor) string {
	if c.LastSeenAt == nil {
		return "-"
	}
	return c.LastSeenAt.Format("2006-01-02")
}

func init() {
	for _, sub := range []*cobra.Command{competitorsListCmd, competitorsResetCmd, competitorsRefreshCmd} {
		sub.Flags().String("business", "", "business id (required)")
		_ = sub.MarkFlagRequired("business")
		competitorsCmd.AddCommand(sub)
	}
	rootCmd.AddCommand(competitorsCmd)
}

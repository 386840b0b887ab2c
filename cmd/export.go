package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/brandsight/rank-tracker/internal/rank"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a business's rank history",
	Long: `Writes the business's rank observations for a date range to CSV
or XLSX for reporting.

Examples:
  export --business 550e8400-... --from 2026-08-01 --to 2026-08-31 --output ranks.csv
  export --business 550e8400-... --from 2026-08-01 --to 2026-08-31 --format xlsx --output ranks.xlsx`,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.String("business", "", "business id (required)")
	f.String("from", "", "range start date, YYYY-MM-DD (required)")
	f.String("to", "", "range end date, YYYY-MM-DD (required)")
	f.String("format", "csv", "output format: csv or xlsx")
	f.String("output", "", "output file path (default: stdout, csv only)")
	_ = exportCmd.MarkFlagRequired("business")
	_ = exportCmd.MarkFlagRequired("from")
	_ = exportCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("db"); err != nil {
		return err
	}

	businessID, err := parseBusinessID(cmd)
	if err != nil {
		return err
	}

	rawFrom, _ := cmd.Flags().GetString("from")
	rawTo, _ := cmd.Flags().GetString("to")
	from, err := time.ParseInLocation("2006-01-02", rawFrom, time.UTC)
	if err != nil {
		return eris.Wrapf(err, "invalid from date %q", rawFrom)
	}
	to, err := time.ParseInLocation("2006-01-02", rawTo, time.UTC)
	if err != nil {
		return eris.Wrapf(err, "invalid to date %q", rawTo)
	}

	env, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	history, err := env.RankStore.RankHistory(ctx, businessID, from, to)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	switch format {
	case "csv":
		if err := writeCSV(history, output); err != nil {
			return err
		}
	case "xlsx":
		if output == "" {
			return eris.New("--output is required for xlsx")
		}
		if err := writeXLSX(history, output); err != nil {
			return err
		}
	default:
		return eris.Errorf("unknown format %q", format)
	}

	zap.L().Info("rank history exported",
		zap.String("business_id", businessID.String()),
		zap.Int("rows", len(history)),
		zap.String("format", format))
	return nil
}

var exportHeader = []string{"keyword", "device", "rank_position", "map_pack_position", "captured_at"}

func historyRecord(h rank.HistoryRow) []string {
	return []string{
		h.Keyword,
		string(h.Device),
		fmtIntCell(h.RankPosition),
		fmtIntCell(h.MapPackPosition),
		h.CapturedAt.Format("2006-01-02"),
	}
}

func writeCSV(history []rank.HistoryRow, output string) error {
	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return eris.Wrapf(err, "create %s", output)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	if err := w.Write(exportHeader); err != nil {
		return eris.Wrap(err, "write csv header")
	}
	for _, h := range history {
		if err := w.Write(historyRecord(h)); err != nil {
			return eris.Wrap(err, "write csv row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "flush csv")
}

func writeXLSX(history []rank.HistoryRow, output string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Rank History")
	if err != nil {
		return eris.Wrap(err, "add sheet")
	}

	header := sheet.AddRow()
	for _, col := range exportHeader {
		header.AddCell().SetString(col)
	}
	for _, h := range history {
		row := sheet.AddRow()
		for _, cell := range historyRecord(h) {
			row.AddCell().SetString(cell)
		}
	}

	if err := file.Save(output); err != nil {
		return eris.Wrapf(err, "save %s", output)
	}
	fmt.Printf("wrote %d rows to %s\n", len(history), output)
	return nil
}

func fmtIntCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

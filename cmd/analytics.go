package cmd

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"nyayadrishti/casemetrics/internal/format"
	"nyayadrishti/casemetrics/internal/metrics"
)

var (
	analyticsJSON bool
	analyticsTopN int
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Court analytics: totals, clearance rate, stage funnel, trends, judge workload",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, ds, p, err := runPipeline(cmd)
		if noCases(err) {
			return nil
		}
		if err != nil {
			return err
		}

		j, err := p.Merge(ds)
		if err != nil && !errors.Is(err, metrics.ErrNoJoinKey) {
			return fmt.Errorf("merging hearings: %w", err)
		}

		report := metrics.Analyze(res, j)

		if analyticsJSON {
			return printJSON(report)
		}

		printAnalytics(report, j != nil)
		return nil
	},
}

func init() {
	analyticsCmd.Flags().BoolVar(&analyticsJSON, "json", false, "Output as JSON")
	analyticsCmd.Flags().IntVar(&analyticsTopN, "top-n", 10, "Number of top items to show per section")
	addQueryFlags(analyticsCmd)
	rootCmd.AddCommand(analyticsCmd)
}

func printAnalytics(report *metrics.AnalyticsReport, haveHearings bool) {
	t := report.Totals
	fmt.Printf("\n  Clearance: %s  [%s]\n", format.Percent(t.ClearanceRate), format.Bar(t.ClearanceRate, 100, 20))
	if len(report.Years) > 0 {
		fmt.Printf("  filing years: %v\n", report.Years)
	}
	fmt.Println()

	fmt.Println("  TOTALS")
	fmt.Println("  ────────────────────────────────────────")
	fmt.Printf("  Cases: %d  Disposed: %d  Pending: %d  Pending > 1 year: %d\n",
		t.Total, t.Disposed, t.Pending, t.PendingOverYear)

	// Per-year trends
	if len(report.DisposalTrend) > 0 {
		fmt.Println("\n  BY FILING YEAR")
		fmt.Println("  ────────────────────────────────────────")
		tb := format.NewTable("Year", "Avg disposal days", "Clearance").AlignRight(2, 3)
		for i, d := range report.DisposalTrend {
			cr := "-"
			if i < len(report.ClearanceTrend) && report.ClearanceTrend[i].Year == d.Year {
				cr = format.Percent(report.ClearanceTrend[i].Value)
			}
			tb.Row(d.Year, format.Days(d.Value), cr)
		}
		fmt.Println(indent(tb.String()))
	}

	// Disposal distribution
	if len(report.Distribution) > 0 {
		fmt.Println("\n  Disposal days distribution:")
		for _, b := range report.Distribution {
			if b.Count > 0 {
				barWidth := int(math.Log2(float64(b.Count))) + 2
				fmt.Printf("    %6.0f-%-6.0f %4d  %s\n", b.Lo, b.Hi, b.Count, strings.Repeat("=", barWidth))
			}
		}
	}

	if !haveHearings {
		fmt.Println("\n  (no hearings table: stage funnel and judge workload unavailable)")
	} else {
		printCounts("STAGE FUNNEL", report.StageFunnel)
		printCounts("JUDGE WORKLOAD (hearings)", report.JudgeWorkload)
	}

	// Predictions and anomalies
	ps := report.Predictions
	fmt.Println("\n  PREDICTIONS")
	fmt.Println("  ────────────────────────────────────────")
	fmt.Printf("  MAE: %s days  avg predicted: %s  avg hearings: %.1f  high risk: %s\n",
		format.Days(ps.MAE), format.Days(ps.AvgPredicted), ps.AvgHearings, format.Percent(ps.HighRiskPercent))

	as := report.Anomalies
	fmt.Println("\n  ANOMALIES")
	fmt.Println("  ────────────────────────────────────────")
	fmt.Printf("  %d of %d cases (%s)  critical=%d high=%d\n\n",
		as.Anomalous, as.Total, format.Percent(as.Percent), as.Critical, as.High)
}

func printCounts(title string, counts []metrics.Count) {
	fmt.Printf("\n  %s\n", title)
	fmt.Println("  ────────────────────────────────────────")
	if len(counts) == 0 {
		fmt.Println("  (none)")
		return
	}
	limit := analyticsTopN
	if limit <= 0 || len(counts) < limit {
		limit = len(counts)
	}
	for _, c := range counts[:limit] {
		fmt.Printf("    %-30s %6d\n", format.Truncate(c.Label, 30), c.Count)
	}
	if len(counts) > limit {
		fmt.Printf("    ... and %d more\n", len(counts)-limit)
	}
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}

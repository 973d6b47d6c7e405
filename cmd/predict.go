package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nyayadrishti/casemetrics/internal/format"
	"nyayadrishti/casemetrics/internal/metrics"
)

var (
	predictJSON bool
	predictTopN int
	predictRisk string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict disposal days, best/worst case and delay risk per case",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, _, _, err := runPipeline(cmd)
		if noCases(err) {
			return nil
		}
		if err != nil {
			return err
		}

		cases := res.Cases
		if predictRisk != "" {
			var kept []metrics.EnrichedCase
			for _, c := range cases {
				if c.DelayRisk == predictRisk {
					kept = append(kept, c)
				}
			}
			cases = kept
		}
		summary := metrics.SummarizePredictions(res.Cases)

		if predictJSON {
			return printJSON(map[string]any{
				"params":          res.Params,
				"risk_thresholds": res.Risk,
				"summary":         summary,
				"cases":           cases,
			})
		}

		fmt.Printf("\n  Disposal predictions (%d cases, baseline %d, %d/hearing, %d/year)\n",
			len(res.Cases), res.Params.BaselineDelay, res.Params.HearingWeight, res.Params.YearWeight)
		fmt.Printf("  MAE vs actual: %s days   avg predicted: %s   avg hearings: %.1f   high risk: %s\n",
			format.Days(summary.MAE), format.Days(summary.AvgPredicted), summary.AvgHearings, format.Percent(summary.HighRiskPercent))
		fmt.Printf("  risk: Low <= %s < Medium <= %s < High   (%d / %d / %d)\n\n",
			format.Days(res.Risk.P33), format.Days(res.Risk.P66), summary.LowRisk, summary.MediumRisk, summary.HighRisk)

		tb := format.NewTable("CNR", "Filed", "Hearings", "Predicted", "Best", "Worst", "Risk", "Bottleneck").
			AlignRight(3, 4, 5, 6)
		for i, c := range cases {
			if predictTopN > 0 && i >= predictTopN {
				break
			}
			tb.Row(c.CNRNumber, fmt.Sprintf("%.0f", c.FilingYear), fmt.Sprintf("%.0f", c.TotalHearings),
				format.Days(c.PredictedDisposal), format.Days(c.BestCaseDays), format.Days(c.WorstCaseDays),
				c.DelayRisk, c.PrimaryBottleneck)
		}
		fmt.Fprintln(os.Stdout, tb.String())
		if predictTopN > 0 && len(cases) > predictTopN {
			fmt.Printf("  ... %d more (use --top-n 0 for all)\n", len(cases)-predictTopN)
		}
		return nil
	},
}

func init() {
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "Output as JSON")
	predictCmd.Flags().IntVar(&predictTopN, "top-n", 20, "Rows to show (0 = all)")
	predictCmd.Flags().StringVar(&predictRisk, "risk", "", "Only show cases with this delay risk (Low, Medium, High)")
	addQueryFlags(predictCmd)
	rootCmd.AddCommand(predictCmd)
}

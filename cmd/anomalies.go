package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"nyayadrishti/casemetrics/internal/format"
	"nyayadrishti/casemetrics/internal/metrics"
)

var (
	anomaliesJSON bool
	anomaliesAll  bool
	anomaliesTopN int
)

var anomaliesCmd = &cobra.Command{
	Use:   "anomalies",
	Short: "Flag outlier cases with an isolation forest and explain them",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, _, _, err := runPipeline(cmd)
		if noCases(err) {
			return nil
		}
		if err != nil {
			return err
		}

		cases := res.Anomalies()
		if anomaliesAll {
			cases = res.Cases
		}
		summary := metrics.SummarizeAnomalies(res.Cases)

		if anomaliesJSON {
			return printJSON(map[string]any{
				"summary":    summary,
				"thresholds": res.Explain,
				"features":   res.Features,
				"cases":      cases,
			})
		}

		fmt.Printf("\n  Anomalies: %d of %d cases (%s)   critical=%d high=%d\n",
			summary.Anomalous, summary.Total, format.Percent(summary.Percent), summary.Critical, summary.High)
		fmt.Printf("  features: %v\n", res.Features)
		printThreshold("case duration p90", res.Explain.CaseDuration)
		printThreshold("hearings p95", res.Explain.TotalHearings)
		printThreshold("disposal days p95", res.Explain.DisposalDays)
		fmt.Println()

		if len(cases) == 0 {
			fmt.Println("  No anomalous cases.")
			return nil
		}
		tb := format.NewTable("CNR", "Score", "Severity", "Reason").AlignRight(2).Wrap(4, 60)
		for i, c := range cases {
			if anomaliesTopN > 0 && i >= anomaliesTopN {
				break
			}
			tb.Row(c.CNRNumber, fmt.Sprintf("%.4f", c.AnomalyScore), c.Severity, c.AnomalyReason)
		}
		fmt.Println(tb.String())
		return nil
	},
}

func printThreshold(label string, t metrics.Threshold) {
	if !t.OK {
		fmt.Printf("  %-18s n/a\n", label)
		return
	}
	fmt.Printf("  %-18s %s\n", label, format.Days(t.Value))
}

func init() {
	anomaliesCmd.Flags().BoolVar(&anomaliesJSON, "json", false, "Output as JSON")
	anomaliesCmd.Flags().BoolVar(&anomaliesAll, "all", false, "List every case, not just flagged ones")
	anomaliesCmd.Flags().IntVar(&anomaliesTopN, "top-n", 25, "Rows to show (0 = all)")
	addQueryFlags(anomaliesCmd)
	rootCmd.AddCommand(anomaliesCmd)
}

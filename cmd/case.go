package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"nyayadrishti/casemetrics/internal/format"
	"nyayadrishti/casemetrics/internal/metrics"
)

var caseJSON bool

var caseCmd = &cobra.Command{
	Use:   "case <cnr>",
	Short: "Show the summary of one case: status, risk, prediction and anomaly verdict",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, _, _, err := runPipeline(cmd)
		if noCases(err) {
			return nil
		}
		if err != nil {
			return err
		}

		s, err := metrics.Summarize(res, args[0])
		if errors.Is(err, metrics.ErrCaseNotFound) {
			fmt.Printf("case not found: %s\n", args[0])
			return nil
		}
		if err != nil {
			return err
		}

		if caseJSON {
			return printJSON(s)
		}

		fmt.Printf("\n  %s", s.CNRNumber)
		if s.CourtName != "" {
			fmt.Printf("  %s", s.CourtName)
		}
		if s.CaseType != "" {
			fmt.Printf("  (%s)", s.CaseType)
		}
		fmt.Println()
		fmt.Println("  ────────────────────────────────────────")
		fmt.Printf("  Status: %s   Risk: %s\n", s.Status, s.Risk)
		fmt.Printf("  Filed: %.0f   Hearings: %.0f   Disposal days: %s\n", s.FilingYear, s.TotalHearings, format.Days(s.DisposalDays))
		if p := s.Prediction; p != nil {
			fmt.Printf("  Predicted: %s days (best %s, worst %s)   delay risk %s, %s\n",
				format.Days(p.PredictedDisposal), format.Days(p.BestCaseDays), format.Days(p.WorstCaseDays),
				p.DelayRisk, p.PrimaryBottleneck)
			fmt.Printf("    = %s baseline + %s hearings + %s filing year\n",
				format.Days(p.BaselineComponent), format.Days(p.HearingComponent), format.Days(p.YearComponent))
		}
		if a := s.Anomaly; a != nil {
			verdict := "normal"
			if a.AnomalyFlag {
				verdict = "ANOMALY"
			}
			fmt.Printf("  Anomaly: %s (score %.4f, %s) %s\n", verdict, a.AnomalyScore, a.Severity, a.AnomalyReason)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	caseCmd.Flags().BoolVar(&caseJSON, "json", false, "Output as JSON")
	addQueryFlags(caseCmd)
	rootCmd.AddCommand(caseCmd)
}

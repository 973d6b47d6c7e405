package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"nyayadrishti/casemetrics/internal/format"
	"nyayadrishti/casemetrics/internal/metrics"
)

var (
	judgeJSON bool
	judgeTopN int
)

var judgeCmd = &cobra.Command{
	Use:   "judge",
	Short: "Judge dashboard: cause list by priority, alerts, hearing overview",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer store.Close()

		sess, err := authenticate(store)
		if err != nil {
			return err
		}
		today, err := referenceDay()
		if err != nil {
			return err
		}
		j, err := loadJoin(cmd)
		if err != nil {
			return err
		}

		rep, err := metrics.JudgeView(sess, j, today)
		if errors.Is(err, metrics.ErrNoCases) {
			fmt.Printf("No cases found for judge %s\n", sess.UserID)
			return nil
		}
		if err != nil {
			return err
		}

		if judgeJSON {
			return printJSON(rep)
		}
		printJudge(rep)
		return nil
	},
}

func init() {
	judgeCmd.Flags().BoolVar(&judgeJSON, "json", false, "Output as JSON")
	judgeCmd.Flags().IntVar(&judgeTopN, "top-n", 15, "Rows to show per section (0 = all)")
	addSessionFlags(judgeCmd)
	addTodayFlag(judgeCmd)
	rootCmd.AddCommand(judgeCmd)
}

// loadJoin loads the tables and merges cases with hearings.
func loadJoin(cmd *cobra.Command) (*metrics.Joined, error) {
	ds, err := loadDataset(cmd.Context())
	if err != nil {
		return nil, err
	}
	j, err := newPipeline().Merge(ds)
	if errors.Is(err, metrics.ErrNoJoinKey) && ds.Hearings == nil {
		return nil, fmt.Errorf("this view needs a hearings table (--hearings): %w", err)
	}
	return j, err
}

func printJudge(rep *metrics.JudgeReport) {
	fmt.Printf("\n  Judge %s   avg health %s [%s]\n", rep.Judge, format.Days(rep.AvgHealth), format.Bar(rep.AvgHealth, 100, 20))
	fmt.Printf("  disposed: %d  pending: %d\n", rep.Disposed, rep.Pending)
	for _, s := range rep.StatusCounts {
		fmt.Printf("    %-24s %5d\n", format.Truncate(s.Label, 24), s.Count)
	}

	printRows("CAUSE LIST (by priority)", rep.Cases)
	printRows("ALERTS (health < 40 or older than 2 years)", rep.Alerts)
	printRows("HEARINGS TODAY", rep.TodayHearings)
	printRows("UPCOMING HEARINGS", rep.UpcomingHearings)
	printRows("RESCHEDULED", rep.Rescheduled)

	if len(rep.DisposalYearTrend) > 0 {
		fmt.Println("\n  Disposals by year:")
		for _, c := range rep.DisposalYearTrend {
			fmt.Printf("    %s: %d\n", c.Label, c.Count)
		}
	}
	fmt.Println()
}

func printRows(title string, rows []metrics.CaseRow) {
	fmt.Printf("\n  %s: %d\n", title, len(rows))
	if len(rows) == 0 {
		return
	}
	tb := format.NewTable("CNR", "Status", "Age", "Health", "Priority", "Next hearing", "Stage").AlignRight(3, 4, 5)
	for i, r := range rows {
		if judgeTopN > 0 && i >= judgeTopN {
			break
		}
		tb.Row(r.CNRNumber, format.Truncate(r.CurrentStatus, 16), format.Days(r.AgeDays),
			format.Days(r.CaseHealthScore), format.Days(r.PriorityScore), format.Date(r.NextHearing), r.Stage)
	}
	fmt.Println(indent(tb.String()))
	if judgeTopN > 0 && len(rows) > judgeTopN {
		fmt.Printf("    ... and %d more\n", len(rows)-judgeTopN)
	}
}

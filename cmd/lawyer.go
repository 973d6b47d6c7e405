package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nyayadrishti/casemetrics/internal/format"
	"nyayadrishti/casemetrics/internal/metrics"
)

var (
	lawyerJSON          bool
	lawyerSaveReminders bool
)

var lawyerCmd = &cobra.Command{
	Use:   "lawyer",
	Short: "Lawyer workspace: portfolio, upcoming hearings, health and reminders",
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

		rep, err := metrics.LawyerView(sess, j, today)
		if errors.Is(err, metrics.ErrNoCases) {
			fmt.Printf("No cases found for advocate %s\n", sess.UserID)
			return nil
		}
		if err != nil {
			return err
		}

		if lawyerSaveReminders && len(rep.Reminders) > 0 {
			batch := make(map[string]time.Time, len(rep.Reminders))
			for _, r := range rep.Reminders {
				batch[r.CNR] = r.Date
			}
			if err := store.SetReminders(batch); err != nil {
				return err
			}
			logger.Info("reminders saved", zap.Int("count", len(batch)))
		}

		if lawyerJSON {
			return printJSON(rep)
		}

		fmt.Printf("\n  Advocate %s   workspace health %d [%s]\n", rep.Lawyer, rep.Health, format.Bar(float64(rep.Health), 100, 20))
		fmt.Printf("  active cases: %d   hearings in the next 7 days: %d\n", rep.Active, rep.HearingsWithin7)
		printRows("PORTFOLIO", rep.Portfolio)

		fmt.Printf("\n  REMINDERS: %d\n", len(rep.Reminders))
		for _, r := range rep.Reminders {
			fmt.Printf("    %s  %s\n", r.Date.Format(time.DateOnly), r.CNR)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	lawyerCmd.Flags().BoolVar(&lawyerJSON, "json", false, "Output as JSON")
	lawyerCmd.Flags().BoolVar(&lawyerSaveReminders, "save-reminders", true, "Store the computed reminders")
	lawyerCmd.Flags().IntVar(&judgeTopN, "top-n", 15, "Rows to show (0 = all)")
	addSessionFlags(lawyerCmd)
	addTodayFlag(lawyerCmd)
	rootCmd.AddCommand(lawyerCmd)
}

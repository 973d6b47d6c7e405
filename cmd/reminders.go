package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"nyayadrishti/casemetrics/internal/format"
)

var (
	remindersJSON bool
	remindersDone string
)

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "List stored hearing reminders (saved by 'casemetrics lawyer')",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer store.Close()

		if remindersDone != "" {
			if err := store.DeleteReminder(remindersDone); err != nil {
				return err
			}
			fmt.Printf("Cleared reminder for %s\n", remindersDone)
			return nil
		}

		list, err := store.ListReminders()
		if err != nil {
			return err
		}
		if remindersJSON {
			return printJSON(list)
		}
		if len(list) == 0 {
			fmt.Println("No reminders.")
			return nil
		}
		tb := format.NewTable("Remind on", "CNR")
		for _, r := range list {
			tb.Row(r.RemindOn, r.CNR)
		}
		fmt.Println(tb.String())
		return nil
	},
}

func init() {
	remindersCmd.Flags().BoolVar(&remindersJSON, "json", false, "Output as JSON")
	remindersCmd.Flags().StringVar(&remindersDone, "done", "", "Clear the reminder for this case number")
	rootCmd.AddCommand(remindersCmd)
}

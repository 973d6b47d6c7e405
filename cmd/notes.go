package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"nyayadrishti/casemetrics/internal/format"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Read and write per-case notes",
}

var notesGetCmd = &cobra.Command{
	Use:   "get <cnr>",
	Short: "Print the note for a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer store.Close()

		body, err := store.GetNote(args[0])
		if err != nil {
			return err
		}
		if body == "" {
			fmt.Printf("No note for %s\n", args[0])
			return nil
		}
		fmt.Println(body)
		return nil
	},
}

var notesSetCmd = &cobra.Command{
	Use:   "set <cnr> <text...>",
	Short: "Replace the note for a case",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SetNote(args[0], strings.Join(args[1:], " ")); err != nil {
			return err
		}
		fmt.Printf("Saved note for %s\n", args[0])
		return nil
	},
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every stored note",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer store.Close()

		notes, err := store.ListNotes()
		if err != nil {
			return err
		}
		if len(notes) == 0 {
			fmt.Println("No notes.")
			return nil
		}
		tb := format.NewTable("CNR", "Updated", "Note").Wrap(3, 60)
		for _, n := range notes {
			tb.Row(n.CNR, time.UnixMilli(n.UpdatedAt).Format(time.DateTime), n.Body)
		}
		fmt.Println(tb.String())
		return nil
	},
}

func init() {
	notesCmd.AddCommand(notesGetCmd, notesSetCmd, notesListCmd)
	rootCmd.AddCommand(notesCmd)
}

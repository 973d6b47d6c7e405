package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nyayadrishti/casemetrics/internal/metrics"
)

var (
	loginUser string
	loginRole string
	loginJSON bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Issue a session token for a judge, lawyer or analyst",
	Long: `Issue a session token. Judges log in with the name that appears in the
hearings table; lawyers with the name used in the advocate columns.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, ok := metrics.ParseRole(loginRole)
		if !ok {
			return fmt.Errorf("invalid --role %q (valid: judge, lawyer, analyst)", loginRole)
		}

		store, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer store.Close()

		sess, err := store.CreateSession(loginUser, string(role))
		if err != nil {
			return err
		}
		logger.Info("session created", zap.String("user", sess.UserID), zap.String("role", sess.Role))

		if loginJSON {
			return printJSON(sess)
		}
		fmt.Printf("Logged in as %s (%s)\n", sess.UserID, sess.Role)
		fmt.Printf("Token: %s\n", sess.Token)
		fmt.Printf("\n  export CASEMETRICS_TOKEN=%s\n", sess.Token)
		return nil
	},
}

var logoutToken string

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke a session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		token := logoutToken
		if token == "" {
			token = os.Getenv("CASEMETRICS_TOKEN")
		}
		if token == "" {
			return fmt.Errorf("no token given (use --token or CASEMETRICS_TOKEN)")
		}
		store, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeleteSession(token); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

func init() {
	logoutCmd.Flags().StringVar(&logoutToken, "token", "", "Token to revoke (default CASEMETRICS_TOKEN)")
	rootCmd.AddCommand(logoutCmd)

	loginCmd.Flags().StringVar(&loginUser, "user", "", "User id (judge or advocate name)")
	loginCmd.Flags().StringVar(&loginRole, "role", "", "Role: judge, lawyer or analyst")
	loginCmd.Flags().BoolVar(&loginJSON, "json", false, "Output as JSON")
	_ = loginCmd.MarkFlagRequired("user")
	_ = loginCmd.MarkFlagRequired("role")
	rootCmd.AddCommand(loginCmd)
}

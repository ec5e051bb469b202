package cmd

import (
	"fmt"
	"strings"

	"github.com/gabe/rcbt/internal/display"
	"github.com/gabe/rcbt/internal/models"
	"github.com/gabe/rcbt/internal/session"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Restore the files held by the server session",
	Long: `Query the server for the files of the current session. After a validation
detour, run this once the data has been fixed to resume the workflow.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		reset, _ := cmd.Flags().GetBool("reset")
		if reset {
			if err := a.jar.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session cookie removed.")
			return nil
		}

		files, err := a.ctrl.Recover(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if files == nil {
			fmt.Fprintln(out, display.Muted("No active session."))
			return nil
		}
		fmt.Fprintln(out, display.Section("Session files"))
		for _, slot := range models.Slots {
			fmt.Fprintf(out, "  %s %s\n", display.Label(fmt.Sprintf("%-10s", slot.FieldName())), display.Value(files[slot]))
		}
		return nil
	},
}

var validationCmd = &cobra.Command{
	Use:   "validation",
	Short: "Manage the validation detour",
}

var validationDoneCmd = &cobra.Command{
	Use:   "done [note]",
	Short: "Mark the external validation as completed",
	Long: `Record that the inconsistencies reported by the server were validated.
The next session recovery (or a running dashboard) resumes the workflow.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, stateDir, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store, err := session.NewFlagStore(stateDir)
		if err != nil {
			return err
		}
		if err := store.Mark(strings.Join(args, " ")); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), display.OK("Validation marked as completed."))
		return nil
	},
}

func init() {
	sessionCmd.Flags().Bool("reset", false, "forget the stored session cookie")

	validationCmd.AddCommand(validationDoneCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(validationCmd)
}

package cmd

import (
	"github.com/gabe/rcbt/internal/display"
	"github.com/gabe/rcbt/internal/history"
	"github.com/gabe/rcbt/internal/models"
	"github.com/gabe/rcbt/internal/tui"
	"github.com/spf13/cobra"
)

var runTUI = tui.Run

var tuiCmd = &cobra.Command{
	Use:     "tui",
	Short:   "Launch the TUI dashboard",
	Long:    `Launch the interactive dashboard: file slots, global and individual reports, history and the event log.`,
	Aliases: []string{"t"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bridge := tui.NewBridge()
		a, err := newApp(cmd, appOptions{quiet: true, render: bridge})
		if err != nil {
			return err
		}
		defer a.Close()
		a.events.Add(bridge)

		files := map[models.FileSlot]string{}
		for _, slot := range models.Slots {
			if path, _ := cmd.Flags().GetString(string(slot)); path != "" {
				files[slot] = path
			} else if path := a.cfg.Schedule.Files[slot.FieldName()]; path != "" {
				files[slot] = path
			}
		}
		dir, _ := cmd.Flags().GetString("dir")

		// Deletion is confirmed inside the dashboard
		confirm := func(string) bool { return true }
		return runTUI(cmdContext(cmd), tui.Deps{
			Controller:  a.ctrl,
			History:     a.browser(bridge, history.ConfirmFunc(confirm)),
			Bridge:      bridge,
			Log:         a.events,
			Files:       files,
			DownloadDir: dir,
			OpenBrowser: a.cfg.UI.OpenBrowser,
			Opener:      display.OpenURL,
		}, a.flags)
	},
}

func init() {
	addFileFlags(tuiCmd)
	tuiCmd.Flags().StringP("dir", "d", ".", "directory for downloaded reports")
	rootCmd.AddCommand(tuiCmd)
}

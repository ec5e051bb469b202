package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/gabe/rcbt/internal/display"
	"github.com/gabe/rcbt/internal/models"
	"github.com/gabe/rcbt/internal/notify"
	"github.com/gabe/rcbt/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check workbooks against the upload policy",
	Long:  `Check the media type and size of each file the way the upload does, without contacting the server.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		events := notify.NewManager(notify.NewTerminalNotifier(cmd.OutOrStdout()))
		defer events.Close()
		v := validator.New(cfg.Upload, events)

		failed := 0
		for _, path := range args {
			f, err := validator.Describe(path)
			if err != nil {
				events.Error("%v", err)
				failed++
				continue
			}
			sel := models.Selection{models.SlotEnq: f}
			if !v.Validate(sel, models.SlotEnq) {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files rejected", failed, len(args))
		}
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.xlsx>",
	Short: "List the sheets of a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := validator.Describe(args[0])
		if err != nil {
			return err
		}
		sheets, err := validator.Inspect(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", display.Header(f.Name), display.Muted(validator.FormatSize(f.Size)))
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SHEET\tROWS\tCOLS")
		for _, sh := range sheets {
			fmt.Fprintf(w, "%s\t%d\t%d\n", sh.Name, sh.Rows, sh.Cols)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(inspectCmd)
}

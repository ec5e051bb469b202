package cmd

import (
	"fmt"

	"github.com/gabe/rcbt/internal/models"
	"github.com/gabe/rcbt/internal/validator"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:     "upload",
	Short:   "Upload the four input workbooks",
	Long:    `Validate and upload the enq, case, ref and acct workbooks. The server keeps them in the session for later generation.`,
	Aliases: []string{"u"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		sel, err := selectionFromFlags(cmd)
		if err != nil {
			return err
		}
		files, err := a.ctrl.Upload(cmd.Context(), sel)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d files. Run `rcbt generate` to build the report.\n", len(files))
		return nil
	},
}

var generateCmd = &cobra.Command{
	Use:     "generate",
	Short:   "Generate the global report from the uploaded files",
	Long:    `Restore the files of the current server session and generate the global report.`,
	Aliases: []string{"g"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.ctrl.Recover(cmd.Context()); err != nil {
			return err
		}
		_, err = a.ctrl.Generate(cmd.Context())
		return err
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Upload the workbooks and generate the global report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		sel, err := selectionFromFlags(cmd)
		if err != nil {
			return err
		}
		if _, err := a.ctrl.Upload(cmd.Context(), sel); err != nil {
			return err
		}
		_, err = a.ctrl.Generate(cmd.Context())
		return err
	},
}

// selectionFromFlags describes the files given with --enq/--case/--ref/--acct.
// Omitted slots stay out of the selection and are reported by the upload.
func selectionFromFlags(cmd *cobra.Command) (models.Selection, error) {
	sel := models.Selection{}
	for _, slot := range models.Slots {
		path, _ := cmd.Flags().GetString(string(slot))
		if path == "" {
			continue
		}
		f, err := validator.Describe(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", slot.FieldName(), err)
		}
		sel[slot] = f
	}
	return sel, nil
}

func addFileFlags(cmd *cobra.Command) {
	for _, slot := range models.Slots {
		cmd.Flags().String(string(slot), "", "workbook for the "+slot.FieldName()+" slot (.xlsx or .xls)")
	}
}

func init() {
	addFileFlags(uploadCmd)
	addFileFlags(runCmd)

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(runCmd)
}

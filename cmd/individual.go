package cmd

import (
	"fmt"

	"github.com/gabe/rcbt/internal/models"
	"github.com/gabe/rcbt/internal/workflow"
	"github.com/spf13/cobra"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the sites or collaborators available for individual reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := targetTypeFlag(cmd, false)
		if err != nil {
			return err
		}
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := recoverForIndividual(cmd, a); err != nil {
			return err
		}
		if kind == "" {
			for _, k := range []models.TargetType{models.TargetSite, models.TargetCollaborator} {
				a.ctrl.SelectType(k)
			}
			return nil
		}
		a.ctrl.SelectType(kind)
		return nil
	},
}

var individualCmd = &cobra.Command{
	Use:     "individual",
	Short:   "Generate a report filtered by site or collaborator",
	Aliases: []string{"i"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := targetTypeFlag(cmd, true)
		if err != nil {
			return err
		}
		target, _ := cmd.Flags().GetString("target")

		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := recoverForIndividual(cmd, a); err != nil {
			return err
		}
		_, err = a.ctrl.GenerateIndividual(cmd.Context(), kind, target)
		return err
	},
}

// recoverForIndividual restores the session and its targets. Individual
// reports need the files of an earlier upload.
func recoverForIndividual(cmd *cobra.Command, a *app) error {
	files, err := a.ctrl.Recover(cmd.Context())
	if err != nil {
		return err
	}
	if files == nil {
		return fmt.Errorf("no uploaded files in the server session, run `rcbt upload` first")
	}
	if !a.ctrl.IndividualVisible() {
		return workflow.ErrIndividualHidden
	}
	return nil
}

func targetTypeFlag(cmd *cobra.Command, required bool) (models.TargetType, error) {
	raw, _ := cmd.Flags().GetString("type")
	if raw == "" && !required {
		return "", nil
	}
	kind, ok := models.ParseTargetType(raw)
	if !ok {
		return "", fmt.Errorf("--type must be %q or %q", models.TargetSite, models.TargetCollaborator)
	}
	return kind, nil
}

func init() {
	targetsCmd.Flags().StringP("type", "t", "", "site or collaborator (default both)")
	individualCmd.Flags().StringP("type", "t", "", "site or collaborator")
	individualCmd.Flags().String("target", "", "site or collaborator name")

	rootCmd.AddCommand(targetsCmd)
	rootCmd.AddCommand(individualCmd)
}

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/gabe/rcbt/internal/display"
	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Check that the report server is reachable",
	Aliases: []string{"s", "st"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		st, err := a.client.Status(cmd.Context())
		if err != nil {
			if !statusJSON {
				fmt.Fprintf(out, "%s %s %s\n", display.Label("Server:"), display.Value(a.client.BaseURL()), display.Fail("unreachable"))
			}
			return err
		}

		if statusJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		}

		fmt.Fprintln(out, display.Header("RCBT Server"))
		fmt.Fprintf(out, "  %s %s\n", display.Label("URL:    "), display.Value(a.client.BaseURL()))
		fmt.Fprintf(out, "  %s %s\n", display.Label("Status: "), display.OK(st.Status))
		if st.Version != "" {
			fmt.Fprintf(out, "  %s %s\n", display.Label("Version:"), display.Value(st.Version))
		}
		if st.Timestamp != "" {
			fmt.Fprintf(out, "  %s %s\n", display.Label("Time:   "), display.Muted(st.Timestamp))
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(statusCmd)
}

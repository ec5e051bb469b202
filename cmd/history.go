package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/gabe/rcbt/internal/history"
	"github.com/gabe/rcbt/internal/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type historyEntry struct {
	ID             int64    `json:"id" yaml:"id"`
	Timestamp      string   `json:"timestamp" yaml:"timestamp"`
	Type           string   `json:"type" yaml:"type"`
	Filter         string   `json:"filter,omitempty" yaml:"filter,omitempty"`
	Filename       string   `json:"filename" yaml:"filename"`
	FilePath       string   `json:"file_path" yaml:"file_path"`
	TotalTickets   *float64 `json:"total_tickets,omitempty" yaml:"total_tickets,omitempty"`
	Responses      *float64 `json:"responses,omitempty" yaml:"responses,omitempty"`
	Closure        *float64 `json:"closure_rate,omitempty" yaml:"closure_rate,omitempty"`
	ClosureOK      bool     `json:"closure_ok" yaml:"closure_ok"`
	Satisfaction   *float64 `json:"satisfaction_rate,omitempty" yaml:"satisfaction_rate,omitempty"`
	SatisfactionOK bool     `json:"satisfaction_ok" yaml:"satisfaction_ok"`
}

func toHistoryEntries(rows []history.Row) []historyEntry {
	out := make([]historyEntry, 0, len(rows))
	for _, r := range rows {
		rec := r.Record
		e := historyEntry{
			ID:             rec.ID,
			Timestamp:      rec.Timestamp,
			Type:           string(rec.Kind),
			Filename:       rec.Filename,
			FilePath:       rec.FilePath,
			TotalTickets:   rec.TotalTickets,
			Closure:        rec.ClosureRate,
			ClosureOK:      r.ClosureOK,
			Satisfaction:   rec.SatisfactionRate,
			SatisfactionOK: r.SatisfactionOK,
		}
		if rec.Kind == models.ReportKindIndividual {
			e.Filter = rec.Filter()
		}
		if v, ok := r.Responses(); ok {
			e.Responses = &v
		}
		out = append(out, e)
	}
	return out
}

// discardView is used when rows are printed in a machine format instead
type discardView struct{}

func (discardView) History([]history.Row) {}

var historyCmd = &cobra.Command{
	Use:     "history",
	Short:   "List previously generated reports",
	Aliases: []string{"h"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "table", "json", "yaml":
		default:
			return fmt.Errorf("unknown format %q (table, json, yaml)", format)
		}

		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		if format == "table" {
			_, err := a.browser(a.console, nil).List(cmd.Context())
			return err
		}
		rows, err := a.browser(discardView{}, nil).List(cmd.Context())
		if err != nil {
			return err
		}
		return writeHistory(cmd.OutOrStdout(), format, toHistoryEntries(rows))
	},
}

func writeHistory(w io.Writer, format string, entries []historyEntry) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(entries)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a report from the history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid report id %q", args[0])
		}
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		deleted, err := a.browser(a.console, confirmPrompt(cmd, yes)).Delete(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		}
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <report-path>",
	Short: "Download a generated report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")

		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		dest, err := a.browser(a.console, nil).Save(cmd.Context(), args[0], dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", dest)
		return nil
	},
}

var openCmd = &cobra.Command{
	Use:   "open <report-path>",
	Short: "Open a generated report in the browser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		a.console.OpenReport(a.client.DownloadURL(args[0]))
		return nil
	},
}

func init() {
	historyCmd.Flags().StringP("format", "f", "table", "output format (table, json, yaml)")
	historyDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	downloadCmd.Flags().StringP("dir", "d", ".", "destination directory")

	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(openCmd)
}

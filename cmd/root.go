package cmd

import (
	"github.com/spf13/cobra"
)

var (
	flagConfig string
	flagServer string
	flagDebug  bool
)

var rootCmd = &cobra.Command{
	Use:   "rcbt",
	Short: "rcbt - RCBT report workflow client",
	Long: `Upload the four survey workbooks to the RCBT report server, generate the global
report, browse individual reports and the report history.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.rcbt/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "report server url (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug output")
}

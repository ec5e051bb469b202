package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gabe/rcbt/internal/config"
	"github.com/gabe/rcbt/internal/logger"
	"github.com/gabe/rcbt/internal/scheduler"
	"github.com/spf13/cobra"
)

var scheduleOnce bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Upload and generate on the configured cron schedule",
	Long: `Run upload and global generation with the files listed in [schedule] of the
config, on the cron spec in schedule.spec, until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		timeout := config.Duration(a.cfg.Server.UploadTimeout, 0) + config.Duration(a.cfg.Server.Timeout, 0)
		s, err := scheduler.New(a.ctrl, a.cfg.Schedule, timeout, logger.Get())
		if err != nil {
			return err
		}

		if scheduleOnce {
			return s.RunOnce(cmd.Context())
		}

		ctx, stop := signal.NotifyContext(cmdContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := s.Start(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Scheduled %q, next run at %s. Press Ctrl+C to stop.\n",
			a.cfg.Schedule.Spec, s.Next().Format("2006-01-02 15:04"))
		<-ctx.Done()
		s.Stop()
		return nil
	},
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	scheduleCmd.Flags().BoolVar(&scheduleOnce, "once", false, "run a single cycle now and exit")
	rootCmd.AddCommand(scheduleCmd)
}

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabe/rcbt/internal/client"
	"github.com/gabe/rcbt/internal/config"
	"github.com/gabe/rcbt/internal/display"
	"github.com/gabe/rcbt/internal/history"
	"github.com/gabe/rcbt/internal/logger"
	"github.com/gabe/rcbt/internal/notify"
	"github.com/gabe/rcbt/internal/session"
	"github.com/gabe/rcbt/internal/validator"
	"github.com/gabe/rcbt/internal/workflow"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app is everything a command needs, built from config and flags
type app struct {
	cfg       *config.Config
	stateDir  string
	events    *notify.Manager
	jar       *client.PersistentJar
	client    *client.Client
	validator *validator.Validator
	flags     *session.FlagStore
	console   *display.Console
	ctrl      *workflow.Controller
}

// appOptions tunes newApp for a command
type appOptions struct {
	// quiet disables the terminal event backend (the TUI renders events itself)
	quiet bool
	// render replaces the console renderer
	render workflow.Renderer
}

func configPath() (string, error) {
	if flagConfig != "" {
		return flagConfig, nil
	}
	dir, err := config.DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// loadConfig reads the config file (creating it if missing), applies the
// environment and the --server/--debug flags, and initializes logging
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, err := configPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, "", err
	}
	if flagServer != "" {
		cfg.Server.URL = flagServer
	}
	if flagDebug {
		cfg.Logging.Level = "debug"
	}
	logger.Init(cfg.Logging, cmd.ErrOrStderr())

	stateDir, err := cfg.ResolveStateDir(filepath.Dir(path))
	if err != nil {
		return nil, "", err
	}
	return cfg, stateDir, nil
}

func newApp(cmd *cobra.Command, opts appOptions) (*app, error) {
	cfg, stateDir, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, stateDir: stateDir, events: notify.NewManager()}
	if cfg.Notifications.Terminal && !opts.quiet {
		a.events.Add(notify.NewTerminalNotifier(cmd.ErrOrStderr()))
	}
	if cfg.Notifications.LogFile != "" {
		logPath := cfg.Notifications.LogFile
		if !filepath.IsAbs(logPath) {
			logPath = filepath.Join(stateDir, logPath)
		}
		if fn, err := notify.NewFileNotifier(logPath); err != nil {
			logger.Log.WithError(err).Warn("event log file disabled")
		} else {
			a.events.Add(fn)
		}
	}
	if cfg.Notifications.TelegramToken != "" && cfg.Notifications.TelegramChatID != 0 {
		if tn, err := notify.NewTelegramNotifier(cfg.Notifications.TelegramToken, cfg.Notifications.TelegramChatID); err != nil {
			logger.Log.WithError(err).Warn("telegram notifications disabled")
		} else {
			a.events.Add(tn)
		}
	}

	a.jar, err = client.NewPersistentJar(filepath.Join(stateDir, "cookies.json"), cfg.Server.URL)
	if err != nil {
		return nil, err
	}
	a.client, err = client.New(cfg.Server.URL, client.Options{
		Timeout:       config.Duration(cfg.Server.Timeout, 0),
		UploadTimeout: config.Duration(cfg.Server.UploadTimeout, 0),
		Jar:           a.jar,
	})
	if err != nil {
		return nil, err
	}

	a.flags, err = session.NewFlagStore(stateDir)
	if err != nil {
		return nil, err
	}
	a.validator = validator.New(cfg.Upload, a.events)
	a.console = display.NewConsole(cmd.OutOrStdout(), cfg.UI.OpenBrowser)

	render := opts.render
	if render == nil {
		render = a.console
	}
	a.ctrl = workflow.New(a.client, render, a.events, a.flags, a.validator, workflow.OptionsFromConfig(cfg))
	return a, nil
}

// browser builds a history browser rendering to view
func (a *app) browser(view history.View, confirm history.Confirmer) *history.Browser {
	return history.NewBrowser(a.client, view, a.events, confirm, history.ThresholdsFromConfig(a.cfg.History))
}

func (a *app) Close() {
	a.ctrl.Close()
	a.events.Close()
}

// confirmPrompt asks on the command's input. Without --yes a
// non-interactive stdin never confirms.
func confirmPrompt(cmd *cobra.Command, assumeYes bool) history.ConfirmFunc {
	return func(prompt string) bool {
		if assumeYes {
			return true
		}
		in := cmd.InOrStdin()
		if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
			fmt.Fprintln(cmd.ErrOrStderr(), "stdin is not a terminal, pass --yes to confirm")
			return false
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

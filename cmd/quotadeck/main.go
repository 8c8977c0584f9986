// Package main is the quotadeck entry point. The bare command prints a
// one-shot quota report; the dashboard subcommand runs the live view.
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/quotadeck/quotadeck/internal/accounts"
	"github.com/quotadeck/quotadeck/internal/config"
	"github.com/quotadeck/quotadeck/internal/controller"
	"github.com/quotadeck/quotadeck/internal/dashboard"
	"github.com/quotadeck/quotadeck/internal/db"
	"github.com/quotadeck/quotadeck/internal/logger"
	"github.com/quotadeck/quotadeck/internal/report"
	"github.com/quotadeck/quotadeck/internal/source"
	"github.com/quotadeck/quotadeck/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:           "quotadeck",
		Short:         "Report remaining AI model quota across accounts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Println(version.Info())
				return nil
			}
			return runReport(cmd)
		},
	}
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "print version information")
	root.AddCommand(newDashboardCmd())
	return root
}

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Run the live quota dashboard",
		RunE: func(*cobra.Command, []string) error {
			return runDashboard()
		},
	}
}

// staticAccounts adapts a one-shot account list to the sweeping client.
type staticAccounts []accounts.Account

func (s staticAccounts) List() []accounts.Account { return s }

func runReport(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	accts, err := accounts.Load(cfg.AccountsPath)
	if err != nil {
		return fmt.Errorf("failed to load accounts from %s: %w", cfg.AccountsPath, err)
	}
	if len(accts) == 0 {
		return fmt.Errorf("no accounts configured in %s", cfg.AccountsPath)
	}

	ctrl := controller.New(newSource(cfg, staticAccounts(accts)))
	if err := ctrl.Refresh(cmd.Context()); err != nil {
		return err
	}

	fmt.Print(report.Render(ctrl.Snapshot(), ctrl.Aggregates(), time.Now()))
	return nil
}

func runDashboard() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	svc, err := accounts.New(cfg.AccountsPath)
	if err != nil {
		return fmt.Errorf("failed to load accounts from %s: %w", cfg.AccountsPath, err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("failed to close accounts watcher", "error", err)
		}
	}()

	opts := []controller.Option{controller.WithNotifier(controller.DesktopNotifier{})}

	// The cache is best-effort: a broken cache file degrades to an
	// empty first paint, never a startup failure.
	cache, err := db.Open(cfg.CachePath)
	if err != nil {
		logger.Warn("snapshot cache unavailable", "path", cfg.CachePath, "error", err)
	} else {
		defer func() { _ = cache.Close() }()
		opts = append(opts, controller.WithCache(cache))
	}

	ctrl := controller.New(newSource(cfg, svc), opts...)
	defer ctrl.Close()

	if cache != nil {
		if snap, err := cache.LoadSnapshot(); err != nil {
			logger.Warn("failed to load cached snapshot", "error", err)
		} else {
			ctrl.SeedSnapshot(snap)
		}
	}

	program := tea.NewProgram(dashboard.New(ctrl, svc, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard exited with error: %w", err)
	}
	return nil
}

func newSource(cfg *config.Config, provider source.AccountProvider) source.Source {
	exchanger := source.NewOAuthExchanger(cfg.ClientID, cfg.ClientSecret)
	return source.NewClient(provider, exchanger, cfg.BaseURL, cfg.MaxConcurrent)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Elmeric/fotocop/internal/config"
	"github.com/Elmeric/fotocop/internal/logging"
	"github.com/Elmeric/fotocop/internal/report"
	"github.com/Elmeric/fotocop/internal/setup"
	"github.com/Elmeric/fotocop/internal/volume"
)

const (
	Version = "1.2.1"
	AppName = "Fotocop Setup"

	// Exit codes
	ExitSuccess = 0
	ExitError   = 1
	ExitWarning = 2
)

var (
	cfg        *config.Config
	configPath string
	profile    string
	verbose    bool
	dryRun     bool
	assumeYes  bool
)

var rootCmd = &cobra.Command{
	Use:     "fotocop-setup",
	Short:   "Fotocop Setup - install, locate and remove the Fotocop photo manager",
	Long:    "Setup utility for the Fotocop photo manager: resolves the configured memory-card volume, installs the staged payload, and removes installations from the recorded install manifest.",
	Version: Version,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if profile != "" {
			if err := config.ApplyProfile(cfg, profile); err != nil {
				return err
			}
		}

		if err := logging.Configure(cfg, verbose); err != nil {
			return fmt.Errorf("failed to configure logging: %w", err)
		}

		if profile != "" {
			log.Debug().Str("profile", profile).Msg("profile applied")
		}
		return nil
	},
}

func init() {
	rootCmd.SetVersionTemplate(AppName + " {{.Version}}\n")

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML configuration")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "setup profile (standard/portable/silent)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would happen without touching anything")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer prompts with yes")
}

// signalContext cancels the returned context on SIGINT or SIGTERM so a run
// in flight can roll back or stop between entries.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("signal received, shutting down")
		cancel()
	}()

	return ctx, cancel
}

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, volume.ErrAborted),
		errors.Is(err, setup.ErrIncomplete),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return ExitWarning
	default:
		return ExitError
	}
}

// printSteps renders a run's steps the way install and uninstall report them.
func printSteps(result *setup.Result) {
	if result == nil || len(result.Steps) == 0 {
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Step", "Target", "Status", "Detail"})
	for _, step := range result.Steps {
		tw.AppendRow(table.Row{step.Name, step.Target, step.Status, step.Detail})
	}
	tw.Render()
}

// saveSession finalizes the report and writes it out when reporting is on.
func saveSession(session *report.Session, result *setup.Result, runErr error) {
	session.Finish(result, exitCodeFor(runErr))

	if !cfg.Reporting.Enabled {
		return
	}
	path, err := session.Save(cfg.Reporting.Dir)
	if err != nil {
		log.Warn().Err(err).Msg("failed to save the session report")
		return
	}
	log.Info().Str("report", path).Msg("session report saved")
}

func main() {
	ctx, cancel := signalContext()
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
	os.Exit(ExitSuccess)
}

package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/QwQ3213/ACELimiter/internal/config"
	"github.com/QwQ3213/ACELimiter/internal/events"
	"github.com/QwQ3213/ACELimiter/internal/limiter"
	"github.com/QwQ3213/ACELimiter/internal/logging"
	"github.com/QwQ3213/ACELimiter/internal/privilege"
)

var (
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the acelimiter CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "acelimiter",
		Short: "Throttle the ACE anti-cheat background processes",
		Long: `ACELimiter finds the Anti-Cheat Expert processes SGuard64.exe and
SGuardSvc64.exe, lowers them to idle priority and pins them to the last
logical CPU so they stop competing with the game for CPU time.

It can run once (scan, limit) or keep a background monitor that catches
the processes again whenever they are restarted.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			switch cmd.Name() {
			case "version", "help", "create-config":
				return
			}
			if runtime.GOOS == "windows" && !privilege.IsElevated() {
				fmt.Fprintln(os.Stderr, "Warning: not running as administrator, protected processes may not be adjustable")
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(
		newRunCommand(),
		newScanCommand(),
		newLimitCommand(),
		newInfoCommand(),
		newCreateConfigCommand(),
		newVersionCommand(),
	)

	return rootCmd
}

// loadConfig reads configPath, falling back to defaults when the file is missing.
// The --verbose flag always wins over the file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// newService builds the limiter service with the configured logger and journal.
// The journal is nil when none is configured; the returned cleanup closes it.
func newService(cfg *config.Config, emitter events.Emitter) (*limiter.Service, *logging.Journal, func(), error) {
	logging.InitLogger("[acelimiter]", cfg.Verbose)
	logger := logging.DefaultLogger
	logger.SetVerbose(cfg.Verbose)

	var journal *logging.Journal
	if cfg.JournalPath != "" {
		j, err := logging.NewJournal(cfg.JournalPath, logger.Named("[journal]"))
		if err != nil {
			return nil, nil, nil, err
		}
		journal = j
		logger.Debugf("Journaling activity to %s", journal.Path())
	}

	svc := limiter.NewSystemService(limiter.Options{
		Logger:  logger,
		Journal: journal,
		Emitter: emitter,
	})

	cleanup := func() {
		if err := journal.Close(); err != nil {
			logger.Warnf("Failed to close journal: %v", err)
		}
	}
	return svc, journal, cleanup, nil
}

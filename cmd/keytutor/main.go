// Package main provides the CLI entrypoint for keytutor.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/verte-zerg/keytutor/internal/config"
	"github.com/verte-zerg/keytutor/internal/logging"
	"github.com/verte-zerg/keytutor/internal/store"
)

const (
	defaultModule        = "home-row"
	defaultSegmentLength = 60
	defaultLang          = "en"
	defaultWords         = 25
	defaultCaps          = 0.2
	defaultPunct         = 0.2
	defaultWeakTop       = 8
	defaultWeakFactor    = 2.0
	defaultWeakWindow    = 20
	defaultCurveWindow   = 10
	defaultLogLevel      = "info"
)

const defaultPunctSet = ".,!?;:"

// app carries what every subcommand shares.
type app struct {
	env      *viper.Viper
	file     config.FileConfig
	logLevel string
	logPath  string
	logger   *zap.Logger
}

func main() {
	rootCmd := newRootCmd(&app{})
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keytutor",
		Short:         "Layout-aware typing tutor",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error, off)")

	practice := newPracticeFlags()
	rootCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runPractice(cmd, a, practice)
	}
	practice.register(rootCmd)

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLessonsCmd(a))
	rootCmd.AddCommand(newLayoutsCmd())
	rootCmd.AddCommand(newStatsCmd(a))
	return rootCmd
}

// init loads the config file and the environment and builds the logger.
// The config subcommand must work with a broken file, so it skips this.
func (a *app) init(cmd *cobra.Command) error {
	if cmd.Name() == "config" {
		a.logger = zap.NewNop()
		return nil
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.file = fileCfg
	a.env = config.NewEnv()

	a.logPath = config.DefaultLogPath()
	config.Apply(cmd.Flags(), a.env, "log-level", &a.logLevel, fileCfg.Log.Level)
	config.Apply(nil, a.env, "log-path", &a.logPath, fileCfg.Log.Path)
	logger, err := logging.New(a.logLevel, a.logPath)
	if err != nil {
		return err
	}
	a.logger = logger.With(zap.String("command", cmd.Name()))
	return nil
}

func (a *app) openStore() (*store.Store, func(), error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}, nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

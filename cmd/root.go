package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/tuxmole/internal/config"
	"github.com/lakshaymaurya-felt/tuxmole/internal/core"
	"github.com/lakshaymaurya-felt/tuxmole/internal/logger"
	"github.com/lakshaymaurya-felt/tuxmole/pkg/whitelist"
)

var (
	// Global flags
	debug      bool
	configPath string
	logFile    string

	// Version info populated from main
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets build-time version information.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "tm",
	Short: "Deep clean your Linux desktop",
	Long: `TuxMole - Deep clean your Linux desktop.

Reclaims disk space from caches, temp files, trash, editor swap files,
browser caches and package manager leftovers. Every operation can be
previewed with --dry-run before anything is deleted.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Show detailed operation logs")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/tuxmole/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write diagnostic logs to this file")

	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

// session is the state every command builds from flags and the config file.
type session struct {
	home      string
	settings  config.Settings
	catalog   *config.Catalog
	whitelist *whitelist.Whitelist
	log       *logger.Logger
	closer    io.Closer
}

// newSession loads settings and opens the diagnostic logger. When quiet is
// set and no log file is configured, diagnostics are discarded so they do
// not draw over a full-screen view.
func newSession(quiet bool) (*session, error) {
	home := core.HomeDir()

	settings, err := config.LoadSettings(configPath, home)
	if err != nil {
		return nil, err
	}

	level := settings.LogLevel
	if debug {
		level = "debug"
	}

	s := &session{
		home:      home,
		settings:  settings,
		catalog:   config.NewCatalog(config.DefaultLocations()),
		whitelist: whitelist.New(home, settings.Protected),
	}

	path := logFile
	if path == "" {
		path = settings.LogFile
	}
	switch {
	case path != "":
		w, err := logger.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		s.log = logger.New(w, level)
		s.closer = w
	case quiet:
		s.log = logger.Discard()
	default:
		s.log = logger.New(os.Stderr, level)
	}

	for _, id := range settings.UnknownIDs(s.catalog) {
		s.log.Warnf("config: unknown operation %q in enabled list", id)
	}
	return s, nil
}

// Close releases the log file, if any.
func (s *session) Close() {
	if s.closer != nil {
		_ = s.closer.Close()
	}
}

// activeConfigPath returns the config file in effect, or "" when defaults
// are used.
func activeConfigPath(home string) string {
	if configPath != "" {
		return configPath
	}
	for _, p := range config.SettingsPaths(home) {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Package main provides the entry point for the speakdown CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	debug      bool

	rootCmd = &cobra.Command{
		Use:           "speakdown",
		Short:         "Narrate markdown documents with word-level highlighting",
		Long:          "\nSpeakdown turns markdown documents into narrated audio through a remote\nsynthesis service and reconciles the returned word timestamps against the\ndocument text, so a renderer can highlight the exact words being spoken.",
		SilenceErrors: false,
		SilenceUsage:  true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if debug || viper.GetBool("debug") {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
)

// envOverrides carries environment configuration that takes precedence over
// the config file.
type envOverrides struct {
	APIURL string `env:"SPEAKDOWN_API_URL"`
	APIKey string `env:"SPEAKDOWN_API_KEY"`
	Voice  string `env:"SPEAKDOWN_VOICE"`
}

// settings is the merged runtime configuration.
type settings struct {
	APIURL   string
	APIKey   string
	Voice    string
	Quality  string
	Language string

	ManifestPath string
	Jobs         int

	PollInterval time.Duration
	MaxAttempts  int
	GracePolls   int
}

// loadSettings merges the config file, flags bound through viper, and
// environment overrides.
func loadSettings() (settings, error) {
	s := settings{
		APIURL:       viper.GetString("api.url"),
		APIKey:       viper.GetString("api.key"),
		Voice:        viper.GetString("voice"),
		Quality:      viper.GetString("quality"),
		Language:     viper.GetString("language"),
		ManifestPath: viper.GetString("manifest"),
		Jobs:         viper.GetInt("jobs"),
		PollInterval: viper.GetDuration("poll.interval"),
		MaxAttempts:  viper.GetInt("poll.max_attempts"),
		GracePolls:   viper.GetInt("poll.grace_polls"),
	}

	overrides, err := env.ParseAs[envOverrides]()
	if err != nil {
		return settings{}, fmt.Errorf("error parsing environment: %w", err)
	}
	if overrides.APIURL != "" {
		s.APIURL = overrides.APIURL
	}
	if overrides.APIKey != "" {
		s.APIKey = overrides.APIKey
	}
	if overrides.Voice != "" {
		s.Voice = overrides.Voice
	}

	if s.APIURL == "" {
		return settings{}, fmt.Errorf("no narration API configured: set api.url or SPEAKDOWN_API_URL")
	}
	if s.ManifestPath == "" {
		s.ManifestPath = defaultManifestPath()
	}
	if s.Jobs < 1 {
		s.Jobs = 1
	}
	return s, nil
}

func defaultManifestPath() string {
	scope := gap.NewScope(gap.User, "speakdown")
	dir, err := scope.DataPath("")
	if err != nil {
		return "speakdown.manifest.yml"
	}
	return filepath.Join(dir, "manifest.yml")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	viper.SetDefault("voice", "narrator")
	viper.SetDefault("quality", "standard")
	viper.SetDefault("language", "en")
	viper.SetDefault("jobs", 4)
	viper.SetDefault("poll.interval", "5s")
	viper.SetDefault("poll.max_attempts", 120)
	viper.SetDefault("poll.grace_polls", 5)

	rootCmd.AddCommand(syncCmd, renderCmd, statusCmd, configCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "speakdown")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "speakdown")}, dirs...)
	}

	if c := os.Getenv("SPEAKDOWN_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("speakdown")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("speakdown")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "speakdown.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}

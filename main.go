// Package main provides the entry point for the lectern CLI application.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/lectern-reader/lectern/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	width      uint
	mouse      bool
	provider   string
	wpm        int
	noCache    bool
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "lectern [FILE]",
		Short: "Read markdown aloud, with synchronized highlighting",
		Long: paragraph(fmt.Sprintf(
			"\nRead a markdown file aloud while lectern %s the paragraph and word being spoken.",
			keyword("highlights"),
		)),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.ExactArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	// grab config values from Viper
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")
	provider = viper.GetString("provider")
	wpm = viper.GetInt("words_per_minute")
	noCache = viper.GetBool("no_cache")

	if wpm < 0 {
		return fmt.Errorf("words_per_minute must be positive, got %d", wpm)
	}

	// Detect terminal width
	if !cmd.Flags().Changed("width") { //nolint:nestif
		isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
		if isTerminal && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}
			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

func execute(_ *cobra.Command, args []string) error {
	path, err := homedir.Expand(args[0])
	if err != nil {
		path = args[0]
	}
	path, err = filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("unable to resolve path: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("unable to open file: %w", err)
	}
	if info.IsDir() {
		return errors.New("expected a markdown file, got a directory")
	}
	return runTUI(path)
}

func runTUI(path string) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	cfg.Path = path
	cfg.MaxWidth = width
	cfg.EnableMouse = mouse
	cfg.Provider = provider
	cfg.WordsPerMinute = wpm
	if !noCache {
		cfg.CacheDir = cacheDir()
	}
	if v := viper.GetDuration("scroll_cooldown"); v > 0 {
		cfg.ScrollCooldown = v
	}

	if _, err := ui.NewProgram(cfg).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func cacheDir() string {
	if dir := viper.GetString("cache_dir"); dir != "" {
		if expanded, err := homedir.Expand(dir); err == nil {
			return expanded
		}
		return dir
	}
	scope := gap.NewScope(gap.User, "lectern")
	dir, err := scope.CacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "speech")
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
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
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging (to LECTERN_LOGFILE)")
	rootCmd.Flags().UintVarP(&width, "width", "w", 0, "word-wrap at width (set to 0 to use the terminal width)")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel and click-to-seek")
	rootCmd.Flags().StringVar(&provider, "provider", "mock", "speech provider")
	rootCmd.Flags().IntVar(&wpm, "wpm", 170, "planning rate in words per minute")
	rootCmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the synthesis cache")

	// Config bindings
	_ = viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("provider", rootCmd.Flags().Lookup("provider"))
	_ = viper.BindPFlag("words_per_minute", rootCmd.Flags().Lookup("wpm"))
	_ = viper.BindPFlag("no_cache", rootCmd.Flags().Lookup("no-cache"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	viper.SetDefault("width", 0)
	viper.SetDefault("mouse", false)
	viper.SetDefault("provider", "mock")
	viper.SetDefault("words_per_minute", 170)
	viper.SetDefault("scroll_cooldown", "4s")

	rootCmd.AddCommand(configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "lectern")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "lectern")}, dirs...)
	}

	if c := os.Getenv("LECTERN_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("lectern")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("lectern")
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
		configFile = filepath.Join(dirs[0], "lectern.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shorty/internal/config"
)

var version = "0.2.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "shorty",
	Short: "Global Ctrl+Shift+digit application shortcuts",
	Long: `shorty runs in the background and opens an application whenever
Ctrl+Shift+<digit> is pressed anywhere on the desktop. Alt and Cmd/Super must
be released. The matching key press is swallowed; every other key goes through
untouched.

Shortcuts are read from a YAML or TOML file:

  shortcuts:
    "1": /usr/bin/firefox
    "2": ~/Applications/Editor.app

Examples:
  shorty                        # Run with the default config
  shorty --config shorty.toml   # Run with another config file
  shorty check                  # Validate the config and print the mapping
  shorty init                   # Write a sample config`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInterceptor(cmd)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Intercept the keyboard and open mapped applications (default)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInterceptor(cmd)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the config file and print the shortcut mapping",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := optionsFromFlags()
		if err != nil {
			return err
		}
		return NewApp(opts, cmd.OutOrStdout(), cmd.ErrOrStderr()).Check()
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flagConfig
		if path == "" {
			path = config.DefaultPath()
		}
		return writeSampleConfig(cmd, path, flagForce)
	},
}

// Flags shared by every command
var (
	flagConfig   string
	flagLogLevel string
	flagWatch    bool
	flagNoNotify bool
)

// Flags for init
var flagForce bool

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (default: per-user config dir)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level override (debug/info/warn/error)")
	rootCmd.PersistentFlags().BoolVar(&flagWatch, "watch", false, "Reload shortcuts when the config file changes")
	rootCmd.PersistentFlags().BoolVar(&flagNoNotify, "no-notify", false, "Disable desktop error notifications")

	initCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Overwrite an existing config file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initCmd)
}

func optionsFromFlags() (Options, error) {
	if flagLogLevel != "" {
		if _, err := config.ParseLevel(flagLogLevel); err != nil {
			return Options{}, fmt.Errorf("--log-level: %w", err)
		}
	}
	return Options{
		ConfigPath: flagConfig,
		LogLevel:   flagLogLevel,
		Watch:      flagWatch,
		NoNotify:   flagNoNotify,
	}, nil
}

func runInterceptor(cmd *cobra.Command) error {
	opts, err := optionsFromFlags()
	if err != nil {
		return err
	}
	ctx, stop := notifyShutdownContext(cmd.Context())
	defer stop()
	return NewApp(opts, cmd.OutOrStdout(), cmd.ErrOrStderr()).Run(ctx)
}

func writeSampleConfig(cmd *cobra.Command, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if _, err := config.Save(path, config.SampleConfig()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample config to %s\n", path)
	return nil
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/launchwolf/launchwolf/pkg/config"
	"github.com/launchwolf/launchwolf/pkg/prompt"
)

var (
	// Global flags
	settingsPath     string
	localConfigPath  string
	globalConfigPath string
	verbose          bool

	appVersion = "dev"
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, prompt.Failure(err.Error()))
		}
	}
	return err
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	appVersion = version

	rootCmd := &cobra.Command{
		Use:   "launchwolf",
		Short: "LaunchWolf - launch a website in one go",
		Long: `LaunchWolf walks you through launching a small website:

  - Purchase a domain at Gandi
  - Set up email forwarding at Gandi
  - Static hosting with continuous deployment, DNS and SSL at Netlify
  - A mailing list at Mailjet

Answers are saved to a local (project) and a global (per-user) config file,
so the tool can safely be re-run after fixing a problem.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceErrors: true,
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", config.DefaultSettingsFile, "settings file path")
	rootCmd.PersistentFlags().StringVar(&localConfigPath, "local-config", config.DefaultLocalConfigPath(), "local (project) config file path")
	rootCmd.PersistentFlags().StringVar(&globalConfigPath, "global-config", "", "global (per-user) config file path (default: user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newLaunchCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newSettingsCommand())

	return rootCmd
}

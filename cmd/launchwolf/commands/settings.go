package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/launchwolf/launchwolf/pkg/config"
	"github.com/launchwolf/launchwolf/pkg/prompt"
)

func newSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage tool settings",
		Long: `Manage the settings file of the tool itself: logging, tracing, metrics,
provider API endpoints, Gandi dry-run and polling.`,
	}

	cmd.AddCommand(newSettingsInitCommand())
	cmd.AddCommand(newSettingsShowCommand())

	return cmd
}

func newSettingsInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default settings file",
		Example: `  # Write ./launchwolf.yaml
  launchwolf settings init

  # Use the Gandi sandbox: edit providers.gandi_url afterwards
  launchwolf settings init --settings ./sandbox.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info().
				Str("path", settingsPath).
				Bool("force", force).
				Msg("Writing default settings")

			if err := config.WriteSettings(settingsPath, config.DefaultSettings(), force); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), prompt.Success(fmt.Sprintf("Wrote default settings to %s", settingsPath)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing settings file")

	return cmd
}

func newSettingsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings(settingsPath)
			if err != nil {
				return err
			}

			b, err := yaml.Marshal(settings)
			if err != nil {
				return fmt.Errorf("failed to encode settings: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}

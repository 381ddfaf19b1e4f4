package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/launchwolf/launchwolf/pkg/config"
	"github.com/launchwolf/launchwolf/pkg/telemetry"
)

// app holds what every command needs: settings, telemetry and the two
// config files.
type app struct {
	settings *config.Settings
	tel      *telemetry.Telemetry
	local    *config.FileStore
	global   *config.FileStore
	out      io.Writer
}

func newApp(cmd *cobra.Command) (*app, error) {
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		settings.Telemetry.Logging.Level = level
	}
	if verbose {
		settings.Telemetry.Logging.Level = "debug"
	}
	settings.Telemetry.ServiceVersion = appVersion

	tel, err := telemetry.NewTelemetry(&settings.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	// The telemetry logger carries its own level.
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	tel.Logger.SetGlobal()

	globalPath := globalConfigPath
	if globalPath == "" {
		globalPath, err = config.DefaultGlobalConfigPath()
		if err != nil {
			return nil, err
		}
	}

	local := config.NewFileStore(localConfigPath)
	global := config.NewFileStore(globalPath)

	log.Debug().
		Str("settings", settingsPath).
		Str("local_config", local.Path()).
		Str("global_config", global.Path()).
		Msg("Using configuration")

	return &app{
		settings: settings,
		tel:      tel,
		local:    local,
		global:   global,
		out:      cmd.OutOrStdout(),
	}, nil
}

// context attaches telemetry to ctx.
func (a *app) context(ctx context.Context) context.Context {
	return a.tel.WithContext(ctx)
}

// resolver builds a resolver over the app's config files and loads them.
func (a *app) resolver(schema *config.Schema, flags config.FlagSource) (*config.Resolver, error) {
	r := config.NewResolver(schema, flags, a.local, a.global, a.tel.Logger.NewComponentLogger("config").Zerolog())
	r.SetOutput(a.out)
	if err := r.ReadConfig(); err != nil {
		return nil, err
	}
	return r, nil
}

func (a *app) userAgent() string {
	return "launchwolf/" + appVersion
}

// close flushes telemetry. Failures are logged, never returned.
func (a *app) close() {
	// The command context may already be cancelled.
	if err := a.tel.Shutdown(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Failed to flush telemetry")
	}
}

package helpers

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/coral-mesh/vgreq/internal/config"
	"github.com/coral-mesh/vgreq/internal/errors"
	"github.com/coral-mesh/vgreq/internal/logging"
)

// GlobalFlags are the persistent flags shared by every command.
type GlobalFlags struct {
	ConfigPath string
	LogLevel   string
	LogPretty  bool
}

// AddFlags registers the persistent flags.
func (g *GlobalFlags) AddFlags(flags *pflag.FlagSet) {
	flags.StringVar(&g.ConfigPath, "config", "", "Config file (default $VGREQ_CONFIG or ~/.vgreq/config.yaml)")
	flags.StringVar(&g.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.BoolVar(&g.LogPretty, "log-pretty", true, "Human readable log output")

	errors.Must(cobra.MarkFlagFilename(flags, "config", "yaml", "yml"), "failed to annotate --config")
}

// Load reads the configuration and applies flags the user set explicitly,
// which take precedence over file and environment.
func (g *GlobalFlags) Load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.NewLoader(g.ConfigPath).Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if f := flags.Lookup("log-level"); f != nil && f.Changed {
		cfg.Logging.Level = g.LogLevel
	}
	if f := flags.Lookup("log-pretty"); f != nil && f.Changed {
		cfg.Logging.Pretty = g.LogPretty
	}
	return cfg, nil
}

// Logger builds the CLI logger for cfg, writing to the command's stderr.
func Logger(cmd *cobra.Command, cfg *config.Config, component string) zerolog.Logger {
	return logging.NewWithComponent(logging.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
		Output: cmd.ErrOrStderr(),
	}, component)
}

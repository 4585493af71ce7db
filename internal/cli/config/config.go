// Package config implements the 'vgreq config' command family.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coral-mesh/vgreq/internal/cli/helpers"
	"github.com/coral-mesh/vgreq/internal/config"
)

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd(g *helpers.GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vgreq configuration",
		Long: `Manage vgreq configuration.

Configuration Priority:
  1. Command line flags (highest)
  2. VGREQ_* environment variables
  3. Config file (--config, $VGREQ_CONFIG or ~/.vgreq/config.yaml)
  4. Built-in defaults

Environment Variables:
  VGREQ_CONFIG    Config file to use instead of ~/.vgreq/config.yaml`,
	}

	cmd.AddCommand(newViewCmd(g))
	cmd.AddCommand(newInitCmd(g))
	cmd.AddCommand(newPathCmd(g))
	cmd.AddCommand(newValidateCmd(g))

	return cmd
}

// newViewCmd creates the 'config view' command.
func newViewCmd(g *helpers.GlobalFlags) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the effective configuration",
		Long: `Show the configuration after defaults, the config file and environment
overrides have been merged.

Use --raw to print plain YAML without the annotation header.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.Load(cmd)
			if err != nil {
				return err
			}
			return runView(cmd, config.NewLoader(g.ConfigPath).Path(), cfg, raw)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Output raw YAML without annotations")

	return cmd
}

func runView(cmd *cobra.Command, path string, cfg *config.Config, raw bool) error {
	out := cmd.OutOrStdout()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if raw {
		_, err := out.Write(data)
		return err
	}

	fmt.Fprintf(out, "# Config file: %s (%s)\n", path, fileState(path))
	if env := envOverrides(); len(env) > 0 {
		fmt.Fprintln(out, "# Environment overrides:")
		for _, e := range env {
			fmt.Fprintf(out, "#   %s\n", e)
		}
	}
	fmt.Fprintln(out)

	_, err = out.Write(data)
	return err
}

func fileState(path string) string {
	if _, err := os.Stat(path); err != nil {
		return "not found, using defaults"
	}
	return "loaded"
}

// envOverrides lists the VGREQ_* variables that are set, sorted.
func envOverrides() []string {
	var out []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "VGREQ_") {
			out = append(out, kv)
		}
	}
	sort.Strings(out)
	return out
}

// newInitCmd creates the 'config init' command.
func newInitCmd(g *helpers.GlobalFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewLoader(g.ConfigPath)

			if _, err := os.Stat(loader.Path()); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", loader.Path())
			}

			if err := loader.Save(config.Default()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", loader.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

// newPathCmd creates the 'config path' command.
func newPathCmd(g *helpers.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.NewLoader(g.ConfigPath).Path())
			return err
		},
	}
}

// newValidateCmd creates the 'config validate' command.
func newValidateCmd(g *helpers.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration for errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewLoader(g.ConfigPath)
			if _, err := loader.Load(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid\n", loader.Path())
			return nil
		},
	}
}

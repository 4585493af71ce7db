// Package cli assembles the vgreq command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/coral-mesh/vgreq/internal/cli/config"
	"github.com/coral-mesh/vgreq/internal/cli/helpers"
	"github.com/coral-mesh/vgreq/internal/cli/probe"
	"github.com/coral-mesh/vgreq/internal/cli/run"
	"github.com/coral-mesh/vgreq/internal/cli/scan"
	"github.com/coral-mesh/vgreq/internal/cli/table"
	"github.com/coral-mesh/vgreq/pkg/version"
)

// NewRootCmd builds the vgreq command tree.
func NewRootCmd() *cobra.Command {
	g := &helpers.GlobalFlags{}

	rootCmd := &cobra.Command{
		Use:   "vgreq",
		Short: "vgreq - Valgrind client requests for Go programs",
		Long: `Inspect and drive Valgrind client requests from Go.

Commands:
- probe: Report whether this process runs under Valgrind
- table: List every client request this build can issue
- scan:  Find client-request sites in compiled binaries
- run:   Start a program under Valgrind with configured options
- config: Manage the vgreq configuration file`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	g.AddFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(probe.NewProbeCmd(g))
	rootCmd.AddCommand(table.NewTableCmd(g))
	rootCmd.AddCommand(scan.NewScanCmd(g))
	rootCmd.AddCommand(run.NewRunCmd(g))
	rootCmd.AddCommand(config.NewConfigCmd(g))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	format := helpers.NewFormatValue(helpers.FormatTable, helpers.FormatTable, helpers.FormatJSON, helpers.FormatYAML)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if format.Format() != helpers.FormatTable {
				return helpers.Write(cmd, format.Format(), info)
			}

			cmd.Printf("vgreq version %s\n", info.Version)
			cmd.Printf("Git commit: %s\n", info.GitCommit)
			cmd.Printf("Build date: %s\n", info.BuildDate)
			cmd.Printf("Go version: %s\n", info.GoVersion)
			cmd.Printf("Platform: %s\n", info.Platform)
			if info.Tags != "" {
				cmd.Printf("Build tags: %s\n", info.Tags)
			}
			return nil
		},
	}

	helpers.AddFormatFlag(cmd, format)
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// Package scan implements the vgreq scan command.
package scan

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/vgreq/internal/cli/helpers"
	"github.com/coral-mesh/vgreq/internal/magic"
)

// Row is one site in table and csv output.
type Row struct {
	Binary  string `header:"BINARY"`
	Arch    string `header:"ARCH"`
	Addr    uint64 `header:"ADDRESS" format:"%#x"`
	Section string `header:"SECTION"`
	Symbol  string `header:"SYMBOL"`
}

// NewScanCmd creates the 'scan' command.
func NewScanCmd(g *helpers.GlobalFlags) *cobra.Command {
	format := helpers.NewFormatValue(helpers.FormatTable)
	var failEmpty bool

	cmd := &cobra.Command{
		Use:   "scan <binary>...",
		Short: "Find client-request sites in executables",
		Long: `Scan the code sections of ELF and Mach-O executables for the client-request
instruction sequence and attribute every site to its enclosing symbol.

An x86 binary that links the request package has at least one site; one
built for another target with the valgrind_noop tag has none.

Examples:
  vgreq scan ./myservice
  vgreq scan -o json ./a ./b
  vgreq scan --fail-empty ./myservice`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.Load(cmd)
			if err != nil {
				return err
			}
			logger := helpers.Logger(cmd, cfg, "scan")

			reports := make([]*magic.Report, 0, len(args))
			for _, path := range args {
				rep, err := magic.ScanFile(path, logger)
				if err != nil {
					return err
				}
				logger.Debug().
					Str("binary", path).
					Str("arch", string(rep.Arch)).
					Str("build_id", rep.BuildID).
					Int("sites", len(rep.Sites)).
					Msg("Scanned binary")

				if failEmpty && len(rep.Sites) == 0 {
					return fmt.Errorf("%s: no client-request sites found", path)
				}
				reports = append(reports, rep)
			}

			switch f := format.Resolve(cmd, cfg); f {
			case helpers.FormatJSON, helpers.FormatYAML:
				return helpers.Write(cmd, f, reports)
			default:
				return helpers.Write(cmd, f, Flatten(reports))
			}
		},
	}

	helpers.AddFormatFlag(cmd, format)
	cmd.Flags().BoolVar(&failEmpty, "fail-empty", false, "Exit with an error if a binary has no sites")

	return cmd
}

// Flatten turns reports into one row per site.
func Flatten(reports []*magic.Report) []Row {
	rows := []Row{}
	for _, rep := range reports {
		for _, s := range rep.Sites {
			rows = append(rows, Row{
				Binary:  rep.Path,
				Arch:    string(rep.Arch),
				Addr:    s.Addr,
				Section: s.Section,
				Symbol:  s.Symbol,
			})
		}
	}
	return rows
}

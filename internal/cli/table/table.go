// Package table implements the vgreq table command, which lists every client
// request this build knows how to issue.
package table

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/vgreq/internal/cli/helpers"
	"github.com/coral-mesh/vgreq/pkg/valgrind/request"

	// Registering the tool packages fills the request table.
	_ "github.com/coral-mesh/vgreq/pkg/valgrind"
	_ "github.com/coral-mesh/vgreq/pkg/valgrind/callgrind"
	_ "github.com/coral-mesh/vgreq/pkg/valgrind/drd"
	_ "github.com/coral-mesh/vgreq/pkg/valgrind/helgrind"
	_ "github.com/coral-mesh/vgreq/pkg/valgrind/memcheck"
)

// Row is one request in the output.
type Row struct {
	Tool     string   `json:"tool" yaml:"tool" header:"TOOL"`
	Name     string   `json:"name" yaml:"name" header:"REQUEST"`
	Code     uint32   `json:"code" yaml:"code" header:"CODE" format:"%#08x"`
	Args     []string `json:"args" yaml:"args"`
	Sig      string   `json:"-" yaml:"-" header:"SIGNATURE"`
	Result   string   `json:"result" yaml:"result"`
	Unsafe   bool     `json:"unsafe" yaml:"unsafe" header:"UNSAFE"`
	Verified bool     `json:"verified" yaml:"verified" header:"VERIFIED"`
}

// NewTableCmd creates the 'table' command.
func NewTableCmd(g *helpers.GlobalFlags) *cobra.Command {
	format := helpers.NewFormatValue(helpers.FormatTable)
	var tools helpers.ToolFilter
	var verifiedOnly bool

	cmd := &cobra.Command{
		Use:   "table",
		Short: "List the client requests this build can issue",
		Long: `List every registered client request with its code, argument kinds and result
kind.

UNSAFE marks requests that take addresses; Valgrind reads or writes the memory
behind them. VERIFIED marks requests exercised by the test suite against a
running Valgrind.

Examples:
  vgreq table
  vgreq table --tool memcheck -o json
  vgreq table --verified`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.Load(cmd)
			if err != nil {
				return err
			}
			return helpers.Write(cmd, format.Resolve(cmd, cfg), Rows(&tools, verifiedOnly))
		},
	}

	helpers.AddFormatFlag(cmd, format)
	helpers.AddToolFlag(cmd, &tools)
	cmd.Flags().BoolVar(&verifiedOnly, "verified", false, "Only list requests verified against Valgrind")

	return cmd
}

// Rows returns the table entries selected by filter, in table order.
func Rows(filter *helpers.ToolFilter, verifiedOnly bool) []Row {
	rows := []Row{}
	for _, e := range request.Entries() {
		if !filter.Match(e.Tool) || (verifiedOnly && !e.Verified) {
			continue
		}

		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = a.String()
		}

		rows = append(rows, Row{
			Tool:     e.Tool.String(),
			Name:     e.Name,
			Code:     uint32(e.Code),
			Args:     args,
			Sig:      strings.TrimPrefix(e.Signature(), e.Name),
			Result:   e.Result.String(),
			Unsafe:   e.Unsafe(),
			Verified: e.Verified,
		})
	}
	return rows
}

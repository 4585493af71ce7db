// Package probe implements the vgreq probe command.
package probe

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/spf13/cobra"

	"github.com/coral-mesh/vgreq/internal/cli/helpers"
	"github.com/coral-mesh/vgreq/pkg/valgrind"
	"github.com/coral-mesh/vgreq/pkg/valgrind/request"
)

// Report is what probe prints.
type Report struct {
	Supervised bool   `json:"supervised" yaml:"supervised" header:"SUPERVISED"`
	Depth      uint   `json:"depth" yaml:"depth" header:"DEPTH"`
	Errors     uint   `json:"errors" yaml:"errors" header:"ERRORS"`
	Arch       string `json:"arch" yaml:"arch" header:"ARCH"`
	Trap       string `json:"trap" yaml:"trap" header:"TRAP"`

	Target request.TargetInfo `json:"target" yaml:"target"`
	Host   HostInfo           `json:"host" yaml:"host"`
}

// HostInfo is the part of the report that describes the machine.
type HostInfo struct {
	OS              string `json:"os" yaml:"os"`
	Platform        string `json:"platform" yaml:"platform"`
	PlatformVersion string `json:"platform_version" yaml:"platform_version"`
	KernelVersion   string `json:"kernel_version" yaml:"kernel_version"`
	Virtualization  string `json:"virtualization,omitempty" yaml:"virtualization,omitempty"`
	CPUs            int    `json:"cpus" yaml:"cpus"`
	MemoryTotal     uint64 `json:"memory_total" yaml:"memory_total"`
	MemoryAvailable uint64 `json:"memory_available" yaml:"memory_available"`
}

// NewProbeCmd creates the 'probe' command.
func NewProbeCmd(g *helpers.GlobalFlags) *cobra.Command {
	format := helpers.NewFormatValue(helpers.FormatTable)

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Report whether this process runs under Valgrind",
		Long: `Issue RUNNING_ON_VALGRIND and COUNT_ERRORS from this process and print the
answers together with the compiled trap and host details.

Run it under Valgrind to check that client requests reach the tool:
  valgrind --tool=memcheck vgreq probe
  vgreq run -- vgreq probe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.Load(cmd)
			if err != nil {
				return err
			}
			logger := helpers.Logger(cmd, cfg, "probe")

			report := Collect(cmd.Context(), valgrind.New(nil), logger)
			return helpers.Write(cmd, format.Resolve(cmd, cfg), report)
		},
	}

	helpers.AddFormatFlag(cmd, format)
	return cmd
}

// Collect gathers the report. Host lookups that fail are logged and left
// empty.
func Collect(ctx context.Context, client *valgrind.Client, logger zerolog.Logger) Report {
	if ctx == nil {
		ctx = context.Background()
	}

	target := request.Target()
	depth := client.RunningOnValgrind()

	r := Report{
		Supervised: depth > 0,
		Depth:      depth,
		Errors:     client.CountErrors(),
		Arch:       target.Arch,
		Trap:       "native",
		Target:     target,
	}
	if !target.Native {
		r.Trap = "noop"
	}

	if info, err := host.InfoWithContext(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to read host info")
	} else {
		r.Host.OS = info.OS
		r.Host.Platform = info.Platform
		r.Host.PlatformVersion = info.PlatformVersion
		r.Host.KernelVersion = info.KernelVersion
		if info.VirtualizationSystem != "" {
			r.Host.Virtualization = fmt.Sprintf("%s/%s", info.VirtualizationSystem, info.VirtualizationRole)
		}
	}

	if n, err := cpu.CountsWithContext(ctx, true); err != nil {
		logger.Warn().Err(err).Msg("Failed to count CPUs")
	} else {
		r.Host.CPUs = n
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to read memory stats")
	} else {
		r.Host.MemoryTotal = vm.Total
		r.Host.MemoryAvailable = vm.Available
	}

	logger.Debug().
		Bool("supervised", r.Supervised).
		Uint("depth", r.Depth).
		Str("trap", r.Trap).
		Msg("Probe complete")

	return r
}

// Package run implements the vgreq run command, which starts a program under
// Valgrind with arguments taken from the configuration.
package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coral-mesh/vgreq/internal/cli/helpers"
	"github.com/coral-mesh/vgreq/internal/config"
	vgerrors "github.com/coral-mesh/vgreq/internal/errors"
)

const (
	// waitDelay bounds how long a killed run may keep its output pipes open.
	waitDelay = 5 * time.Second

	// EnvRunID is set in the child's environment to the run's id.
	EnvRunID = "VGREQ_RUN_ID"
)

// NewRunCmd creates the 'run' command.
func NewRunCmd(g *helpers.GlobalFlags) *cobra.Command {
	var (
		tool     string
		binary   string
		timeout  time.Duration
		dryRun   bool
		valgrind []string
	)

	cmd := &cobra.Command{
		Use:   "run [flags] [--] <program> [args...]",
		Short: "Run a program under Valgrind",
		Long: `Run a program under Valgrind using the valgrind section of the configuration.

Memcheck runs get --leak-check and, when enabled, --track-origins=yes.
Valgrind's own exit status is propagated, so with error_exitcode set a run
that reports errors fails.

Everything after the program name is passed to the program unchanged.

Each run gets an id in $VGREQ_RUN_ID, so a log_file of
"vg-%q{VGREQ_RUN_ID}.log" keeps runs apart.

Examples:
  vgreq run ./myservice --port 8080
  vgreq run --tool helgrind -- ./myservice
  vgreq run --timeout 5m -V --gen-suppressions=all ./myservice
  vgreq run --dry-run ./myservice`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.Load(cmd)
			if err != nil {
				return err
			}
			logger := helpers.Logger(cmd, cfg, "run")

			vg := cfg.Valgrind
			flags := cmd.Flags()
			if flags.Changed("tool") {
				vg.Tool = tool
			}
			if flags.Changed("valgrind") {
				vg.Binary = binary
			}
			if flags.Changed("timeout") {
				vg.Timeout = timeout
			}
			vg.ExtraArgs = append(append([]string{}, vg.ExtraArgs...), valgrind...)

			if dryRun {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), Command(vg, args[0], args[1:]...))
				return err
			}

			return Run(cmd.Context(), vg, args, IO{
				In:  cmd.InOrStdin(),
				Out: cmd.OutOrStdout(),
				Err: cmd.ErrOrStderr(),
			}, logger)
		},
	}

	// Flags after the program name belong to the program.
	cmd.Flags().SetInterspersed(false)

	cmd.Flags().StringVar(&tool, "tool", "", "Valgrind tool (overrides valgrind.tool)")
	cmd.Flags().StringVar(&binary, "valgrind", "", "Valgrind executable (overrides valgrind.binary)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Kill the run after this long (overrides valgrind.timeout)")
	cmd.Flags().StringArrayVarP(&valgrind, "valgrind-arg", "V", nil, "Extra Valgrind argument (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the command line instead of running it")

	return cmd
}

// IO holds the streams handed to the child.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Args builds the Valgrind command line, without the binary, for running
// prog with args.
func Args(vg config.ValgrindConfig, prog string, args ...string) []string {
	out := []string{"--tool=" + vg.Tool}

	if vg.ErrorExitCode > 0 {
		out = append(out, "--error-exitcode="+strconv.Itoa(vg.ErrorExitCode))
	}
	if vg.Tool == "memcheck" {
		if vg.LeakCheck != "" {
			out = append(out, "--leak-check="+vg.LeakCheck)
		}
		if vg.TrackOrigins {
			out = append(out, "--track-origins=yes")
		}
	}
	for _, s := range vg.Suppressions {
		out = append(out, "--suppressions="+s)
	}
	if vg.LogFile != "" {
		out = append(out, "--log-file="+vg.LogFile)
	}
	out = append(out, vg.ExtraArgs...)

	out = append(out, prog)
	return append(out, args...)
}

// Command renders the full command line for display.
func Command(vg config.ValgrindConfig, prog string, args ...string) string {
	line := strconv.Quote(vg.Binary)
	if isPlain(vg.Binary) {
		line = vg.Binary
	}
	for _, a := range Args(vg, prog, args...) {
		if isPlain(a) {
			line += " " + a
		} else {
			line += " " + strconv.Quote(a)
		}
	}
	return line
}

func isPlain(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '=' || r == '.' || r == '/' || r == ':' || r == ',' || r == '+':
		default:
			return false
		}
	}
	return true
}

// Run starts argv[0] under Valgrind and waits for it. A non-zero exit status
// is returned as *errors.ExitError carrying the code.
func Run(ctx context.Context, vg config.ValgrindConfig, argv []string, stdio IO, logger zerolog.Logger) error {
	if len(argv) == 0 {
		return fmt.Errorf("no program to run")
	}

	binary, err := exec.LookPath(vg.Binary)
	if err != nil {
		return fmt.Errorf("failed to find valgrind: %w", err)
	}

	if vg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, vg.Timeout)
		defer cancel()
	}

	args := Args(vg, argv[0], argv[1:]...)
	child := exec.CommandContext(ctx, binary, args...)
	child.Stdin = stdio.In
	child.Stdout = stdio.Out
	child.Stderr = stdio.Err
	child.WaitDelay = waitDelay
	runID := uuid.New().String()
	child.Env = append(os.Environ(), EnvRunID+"="+runID)

	logger = logger.With().Str("run_id", runID).Logger()
	logger.Info().
		Str("valgrind", binary).
		Str("tool", vg.Tool).
		Strs("args", args).
		Dur("timeout", vg.Timeout).
		Msg("Starting program under valgrind")

	start := time.Now()
	err = child.Run()
	elapsed := time.Since(start)

	if ctx.Err() == context.DeadlineExceeded {
		logger.Error().Dur("elapsed", elapsed).Msg("Run timed out")
		return fmt.Errorf("run timed out after %s", vg.Timeout)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		logger.Info().Dur("elapsed", elapsed).Msg("Run finished")
		return nil
	case errors.As(err, &exitErr):
		code := exitErr.ExitCode()
		logger.Warn().Int("exit_code", code).Dur("elapsed", elapsed).Msg("Run failed")
		if code < 0 {
			// Killed by a signal.
			return fmt.Errorf("run terminated: %w", err)
		}
		return &vgerrors.ExitError{Code: code}
	default:
		return fmt.Errorf("failed to start valgrind: %w", err)
	}
}

package helpers

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/coral-mesh/vgreq/internal/config"
	"github.com/coral-mesh/vgreq/pkg/valgrind/request"
)

// FormatValue is a pflag.Value restricted to a set of output formats.
type FormatValue struct {
	value     OutputFormat
	supported []OutputFormat
}

// NewFormatValue returns a value holding def that accepts only supported.
func NewFormatValue(def OutputFormat, supported ...OutputFormat) *FormatValue {
	if len(supported) == 0 {
		supported = AllFormats
	}
	return &FormatValue{value: def, supported: supported}
}

func (f *FormatValue) String() string { return string(f.value) }

func (f *FormatValue) Type() string { return "format" }

func (f *FormatValue) Set(s string) error {
	if err := ValidateFormat(s, f.supported); err != nil {
		return err
	}
	f.value = OutputFormat(s)
	return nil
}

// Format returns the selected format.
func (f *FormatValue) Format() OutputFormat {
	return f.value
}

// Resolve returns the --format flag when the user set it, otherwise the
// configured default if this command supports it.
func (f *FormatValue) Resolve(cmd *cobra.Command, cfg *config.Config) OutputFormat {
	if fl := cmd.Flags().Lookup("format"); fl != nil && fl.Changed {
		return f.value
	}
	if cfg != nil && ValidateFormat(cfg.Output.Format, f.supported) == nil {
		return OutputFormat(cfg.Output.Format)
	}
	return f.value
}

// Names returns the accepted format names.
func (f *FormatValue) Names() []string {
	names := make([]string, len(f.supported))
	for i, s := range f.supported {
		names[i] = string(s)
	}
	return names
}

// AddFormatFlag adds a standard --format/-o flag to a command.
func AddFormatFlag(cmd *cobra.Command, value *FormatValue) {
	description := fmt.Sprintf("Output format (%s)", strings.Join(value.Names(), ", "))
	cmd.Flags().VarP(value, "format", "o", description)

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return value.Names(), cobra.ShellCompDirectiveNoFileComp
	})
}

// ValidateFormat checks if the format is in the supported list.
func ValidateFormat(format string, supported []OutputFormat) error {
	for _, s := range supported {
		if format == string(s) {
			return nil
		}
	}

	supportedNames := make([]string, len(supported))
	for i, s := range supported {
		supportedNames[i] = string(s)
	}

	return fmt.Errorf("unsupported format %q, must be one of: %s",
		format, strings.Join(supportedNames, ", "))
}

// ToolFilter is a pflag.Value selecting request namespaces by name. Empty
// means every tool.
type ToolFilter struct {
	tools []request.Tool
}

var _ pflag.Value = (*ToolFilter)(nil)

func (f *ToolFilter) String() string {
	names := make([]string, len(f.tools))
	for i, t := range f.tools {
		names[i] = t.String()
	}
	return strings.Join(names, ",")
}

func (f *ToolFilter) Type() string { return "tool" }

// Set accepts a comma separated list and may be repeated.
func (f *ToolFilter) Set(s string) error {
	for _, name := range strings.Split(s, ",") {
		t, err := request.ParseTool(strings.TrimSpace(name))
		if err != nil {
			return err
		}
		f.tools = append(f.tools, t)
	}
	return nil
}

// Match reports whether t is selected.
func (f *ToolFilter) Match(t request.Tool) bool {
	if len(f.tools) == 0 {
		return true
	}
	for _, s := range f.tools {
		if s == t {
			return true
		}
	}
	return false
}

// AddToolFlag adds a --tool flag selecting request namespaces.
func AddToolFlag(cmd *cobra.Command, filter *ToolFilter) {
	cmd.Flags().Var(filter, "tool", "Only show these tools (core, memcheck, callgrind, helgrind, drd)")

	_ = cmd.RegisterFlagCompletionFunc("tool", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"core", "memcheck", "callgrind", "helgrind", "drd"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// Write formats data to the command's output.
func Write(cmd *cobra.Command, format OutputFormat, data interface{}) error {
	formatter, err := NewFormatter(format)
	if err != nil {
		return err
	}
	return formatter.Format(data, cmd.OutOrStdout())
}

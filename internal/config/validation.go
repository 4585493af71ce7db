package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Tools accepted by ValgrindConfig.Tool, as of Valgrind 3.2x.
var knownTools = []string{
	"memcheck", "cachegrind", "callgrind", "helgrind", "drd",
	"massif", "dhat", "lackey", "none", "exp-bbv",
}

var (
	knownLevels     = []string{"trace", "debug", "info", "warn", "error"}
	knownLeakChecks = []string{"no", "summary", "full"}
	knownFormats    = []string{"table", "json", "csv", "yaml"}
)

// Validate reports every problem with cfg at once.
func (cfg *Config) Validate() error {
	var errs []error
	oneOf := func(field, value string, allowed []string) {
		if !slices.Contains(allowed, value) {
			errs = append(errs, fmt.Errorf("%s %q must be one of: %s", field, value, strings.Join(allowed, ", ")))
		}
	}

	oneOf("logging.level", cfg.Logging.Level, knownLevels)
	oneOf("valgrind.tool", cfg.Valgrind.Tool, knownTools)
	oneOf("valgrind.leak_check", cfg.Valgrind.LeakCheck, knownLeakChecks)
	oneOf("output.format", cfg.Output.Format, knownFormats)

	if cfg.Valgrind.Binary == "" {
		errs = append(errs, errors.New("valgrind.binary is required"))
	}
	if cfg.Valgrind.ErrorExitCode < 0 || cfg.Valgrind.ErrorExitCode > 255 {
		errs = append(errs, fmt.Errorf("valgrind.error_exitcode %d must be 0-255", cfg.Valgrind.ErrorExitCode))
	}
	if cfg.Valgrind.Timeout < 0 {
		errs = append(errs, fmt.Errorf("valgrind.timeout %s must not be negative", cfg.Valgrind.Timeout))
	}

	return errors.Join(errs...)
}

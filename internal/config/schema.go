// Package config loads the vgreq configuration file.
package config

import "time"

// Config is the vgreq configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Valgrind ValgrindConfig `yaml:"valgrind"`
	Output   OutputConfig   `yaml:"output"`
}

// LoggingConfig controls diagnostic output of the CLI itself.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level  string `yaml:"level" env:"VGREQ_LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"VGREQ_LOG_PRETTY"`
}

// ValgrindConfig describes how `vgreq run` invokes Valgrind.
type ValgrindConfig struct {
	// Binary is the valgrind executable, looked up in PATH if not absolute.
	Binary string `yaml:"binary" env:"VGREQ_VALGRIND"`
	// Tool is passed as --tool.
	Tool string `yaml:"tool" env:"VGREQ_TOOL"`
	// ErrorExitCode is passed as --error-exitcode. Zero disables it.
	ErrorExitCode int `yaml:"error_exitcode" env:"VGREQ_ERROR_EXITCODE"`
	// LeakCheck is passed as --leak-check under memcheck: no, summary or full.
	LeakCheck string `yaml:"leak_check" env:"VGREQ_LEAK_CHECK"`
	// TrackOrigins adds --track-origins=yes under memcheck.
	TrackOrigins bool `yaml:"track_origins" env:"VGREQ_TRACK_ORIGINS"`
	// Suppressions are passed as one --suppressions each.
	Suppressions []string `yaml:"suppressions" env:"VGREQ_SUPPRESSIONS"`
	// LogFile is passed as --log-file when set.
	LogFile string `yaml:"log_file" env:"VGREQ_LOG_FILE"`
	// ExtraArgs are appended verbatim before the program.
	ExtraArgs []string `yaml:"extra_args" env:"VGREQ_VALGRIND_ARGS"`
	// Timeout kills the run after this long. Zero waits forever.
	Timeout time.Duration `yaml:"timeout" env:"VGREQ_TIMEOUT"`
}

// OutputConfig sets defaults for command output.
type OutputConfig struct {
	// Format is the default for --format: table, json, csv or yaml.
	Format string `yaml:"format" env:"VGREQ_FORMAT"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "warn",
			Pretty: true,
		},
		Valgrind: ValgrindConfig{
			Binary:        "valgrind",
			Tool:          "memcheck",
			ErrorExitCode: 99,
			LeakCheck:     "full",
		},
		Output: OutputConfig{
			Format: "table",
		},
	}
}

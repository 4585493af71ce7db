package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "loud"
	cfg.Valgrind.Tool = "cachegrinder"
	cfg.Valgrind.ErrorExitCode = 300
	cfg.Valgrind.Timeout = -time.Second

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"logging.level", "valgrind.tool", "error_exitcode", "timeout"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestMergeFromEnv(t *testing.T) {
	env := map[string]string{
		"VGREQ_TOOL":           "helgrind",
		"VGREQ_ERROR_EXITCODE": "3",
		"VGREQ_TRACK_ORIGINS":  "true",
		"VGREQ_TIMEOUT":        "90s",
		"VGREQ_SUPPRESSIONS":   "a.supp  b.supp",
		"VGREQ_LOG_FILE":       "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	cfg.Valgrind.LogFile = "old.log"
	require.NoError(t, mergeFromLookup(cfg, lookup))

	assert.Equal(t, "helgrind", cfg.Valgrind.Tool)
	assert.Equal(t, 3, cfg.Valgrind.ErrorExitCode)
	assert.True(t, cfg.Valgrind.TrackOrigins)
	assert.Equal(t, 90*time.Second, cfg.Valgrind.Timeout)
	assert.Equal(t, []string{"a.supp", "b.supp"}, cfg.Valgrind.Suppressions)
	assert.Empty(t, cfg.Valgrind.LogFile, "set but empty clears the field")
	assert.Equal(t, "full", cfg.Valgrind.LeakCheck, "unset variables leave defaults")
}

func TestMergeFromEnv_Errors(t *testing.T) {
	bad := func(k string) (string, bool) {
		if k == "VGREQ_ERROR_EXITCODE" {
			return "many", true
		}
		return "", false
	}
	err := mergeFromLookup(Default(), bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VGREQ_ERROR_EXITCODE")

	assert.Error(t, MergeFromEnv(Config{}), "needs a pointer")
}

func TestLoader_Resolution(t *testing.T) {
	t.Setenv(EnvConfig, "/etc/vgreq.yaml")
	assert.Equal(t, "/tmp/x.yaml", NewLoader("/tmp/x.yaml").Path())
	assert.Equal(t, "/etc/vgreq.yaml", NewLoader("").Path())

	t.Setenv(EnvConfig, "")
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, filepath.Join("/home/tester", DefaultDir, ConfigFile), NewLoader("").Path())
}

func TestLoader_LoadAndSave(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv(EnvConfig, "")
	t.Setenv("VGREQ_LEAK_CHECK", "summary")

	l := NewLoader("")
	cfg, err := l.Load()
	require.NoError(t, err, "a missing default file yields defaults")
	assert.Equal(t, "summary", cfg.Valgrind.LeakCheck)

	cfg.Valgrind.Tool = "drd"
	cfg.Valgrind.Timeout = 5 * time.Minute
	require.NoError(t, l.Save(cfg))

	loaded, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "drd", loaded.Valgrind.Tool)
	assert.Equal(t, 5*time.Minute, loaded.Valgrind.Timeout)
}

func TestLoader_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewLoader(filepath.Join(dir, "missing.yaml")).Load()
	assert.Error(t, err, "an explicit file must exist")

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("valgrind: [\n"), 0o600))
	_, err = NewLoader(broken).Load()
	assert.ErrorContains(t, err, "failed to parse")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("output:\n  format: xml\n"), 0o600))
	_, err = NewLoader(invalid).Load()
	assert.ErrorContains(t, err, "output.format")
}

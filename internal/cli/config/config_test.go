package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/coral-mesh/vgreq/internal/cli/helpers"
	"github.com/coral-mesh/vgreq/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var g helpers.GlobalFlags
	root := &cobra.Command{Use: "vgreq", SilenceUsage: true, SilenceErrors: true}
	g.AddFlags(root.PersistentFlags())
	root.AddCommand(NewConfigCmd(&g))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func setup(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("VGREQ_CONFIG", "")
	return home
}

func TestNewConfigCmd(t *testing.T) {
	cmd := NewConfigCmd(&helpers.GlobalFlags{})

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"view", "init", "path", "validate"}, names)
}

func TestConfigPath(t *testing.T) {
	home := setup(t)

	out, err := execute(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".vgreq", "config.yaml")+"\n", out)

	out, err = execute(t, "config", "path", "--config", "/etc/vgreq.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/etc/vgreq.yaml\n", out)
}

func TestConfigInit(t *testing.T) {
	home := setup(t)
	path := filepath.Join(home, ".vgreq", "config.yaml")

	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	def := config.Default()
	assert.Equal(t, def.Logging, cfg.Logging)
	assert.Equal(t, def.Output, cfg.Output)
	assert.Equal(t, def.Valgrind.Tool, cfg.Valgrind.Tool)
	assert.Equal(t, def.Valgrind.ErrorExitCode, cfg.Valgrind.ErrorExitCode)
	assert.Empty(t, cfg.Valgrind.Suppressions)

	_, err = execute(t, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestConfigView(t *testing.T) {
	setup(t)
	t.Setenv("VGREQ_TOOL", "helgrind")

	out, err := execute(t, "config", "view")
	require.NoError(t, err)
	assert.Contains(t, out, "# Config file:")
	assert.Contains(t, out, "not found, using defaults")
	assert.Contains(t, out, "#   VGREQ_TOOL=helgrind")
	assert.Contains(t, out, "tool: helgrind")

	out, err = execute(t, "config", "view", "--raw")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "helgrind", cfg.Valgrind.Tool)
	assert.Equal(t, 99, cfg.Valgrind.ErrorExitCode)
}

func TestConfigValidate(t *testing.T) {
	setup(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, os.WriteFile(path, []byte("valgrind:\n  tool: memcheck\n  leak_check: summary\n"), 0o600))
	out, err := execute(t, "config", "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	require.NoError(t, os.WriteFile(path, []byte("valgrind:\n  tool: nosuchtool\n"), 0o600))
	_, err = execute(t, "config", "validate", "--config", path)
	assert.ErrorContains(t, err, "nosuchtool")

	_, err = execute(t, "config", "validate", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

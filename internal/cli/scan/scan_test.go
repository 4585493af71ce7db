package scan

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/vgreq/internal/cli/helpers"
	"github.com/coral-mesh/vgreq/internal/magic"
	"github.com/coral-mesh/vgreq/pkg/valgrind/request"
)

func newRoot(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VGREQ_CONFIG", "")

	var g helpers.GlobalFlags
	root := &cobra.Command{Use: "vgreq", SilenceUsage: true, SilenceErrors: true}
	g.AddFlags(root.PersistentFlags())
	root.AddCommand(NewScanCmd(&g))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	return root, &out
}

func TestFlatten(t *testing.T) {
	reports := []*magic.Report{
		{Path: "a", Arch: magic.AMD64, Sites: []magic.Site{{Addr: 0x10, Section: ".text", Symbol: "f"}, {Addr: 0x20}}},
		{Path: "b", Arch: magic.I386},
	}

	rows := Flatten(reports)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Binary: "a", Arch: "amd64", Addr: 0x10, Section: ".text", Symbol: "f"}, rows[0])
	assert.Equal(t, uint64(0x20), rows[1].Addr)
}

func TestScanCmd_Self(t *testing.T) {
	if _, ok := magic.Native(); !ok {
		t.Skip("built with the no-op trap")
	}
	// Keep the trap linked in.
	_ = request.Native{}.Issue(0, request.NewFrame(request.CoreRunningOnValgrind))

	exe, err := os.Executable()
	require.NoError(t, err)

	root, out := newRoot(t)
	root.SetArgs([]string{"scan", "-o", "json", "--fail-empty", exe})
	require.NoError(t, root.Execute())

	var reports []magic.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &reports))
	require.Len(t, reports, 1)
	assert.NotEmpty(t, reports[0].Sites)
}

func TestScanCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("plain text"), 0o600))

	root, _ := newRoot(t)
	root.SetArgs([]string{"scan", notes})
	assert.ErrorIs(t, root.Execute(), magic.ErrUnknownFormat)

	root, _ = newRoot(t)
	root.SetArgs([]string{"scan"})
	assert.Error(t, root.Execute(), "at least one binary is required")
}

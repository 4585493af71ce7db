package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/vgreq/internal/cli/helpers"
	"github.com/coral-mesh/vgreq/internal/testutil"
	"github.com/coral-mesh/vgreq/pkg/valgrind"
	"github.com/coral-mesh/vgreq/pkg/valgrind/request"
)

func TestCollect_Scripted(t *testing.T) {
	rec := request.NewRecorder()
	rec.Respond = func(def request.Word, f request.Frame) request.Word {
		switch f.Code() {
		case request.CoreRunningOnValgrind:
			return 1
		case request.CoreCountErrors:
			return 4
		}
		return def
	}

	r := Collect(context.Background(), valgrind.New(request.NewDispatcher(rec)), testutil.NewTestLogger(t))

	assert.True(t, r.Supervised)
	assert.Equal(t, uint(1), r.Depth)
	assert.Equal(t, uint(4), r.Errors)
	assert.Equal(t, request.Target(), r.Target)
	assert.NotEmpty(t, r.Host.OS)
	assert.Positive(t, r.Host.CPUs)
}

func TestCollect_Native(t *testing.T) {
	testutil.SkipUnderValgrind(t)
	ctx, cancel := testutil.NewTestContext()
	defer cancel()

	r := Collect(ctx, valgrind.New(nil), testutil.NewTestLogger(t))

	assert.False(t, r.Supervised)
	assert.Zero(t, r.Depth)
	assert.Zero(t, r.Errors)
}

func TestProbeCmd_JSON(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VGREQ_CONFIG", "")

	var g helpers.GlobalFlags
	root := &cobra.Command{Use: "vgreq"}
	g.AddFlags(root.PersistentFlags())
	root.AddCommand(NewProbeCmd(&g))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"probe", "-o", "json"})
	require.NoError(t, root.Execute())

	var got Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, request.Target().Arch, got.Arch)
}

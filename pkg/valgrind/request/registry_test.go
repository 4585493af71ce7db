package request_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	_ "github.com/coral-mesh/vgreq/pkg/valgrind"
	_ "github.com/coral-mesh/vgreq/pkg/valgrind/callgrind"
	_ "github.com/coral-mesh/vgreq/pkg/valgrind/drd"
	_ "github.com/coral-mesh/vgreq/pkg/valgrind/helgrind"
	_ "github.com/coral-mesh/vgreq/pkg/valgrind/memcheck"
	"github.com/coral-mesh/vgreq/pkg/valgrind/request"
)

func TestRegistry_AllTools(t *testing.T) {
	perTool := map[request.Tool]int{}
	for _, e := range request.Entries() {
		switch e.Tool {
		case request.Core, request.Memcheck, request.Callgrind, request.Helgrind, request.DRD:
		default:
			continue
		}
		perTool[e.Tool]++

		t.Run(e.String(), func(t *testing.T) {
			// DRD answers Helgrind's CLEAN_MEMORY code.
			if e.Tool == request.DRD && e.Code == request.DRDCleanMemory {
				assert.Equal(t, request.Helgrind, e.Code.Tool())
				return
			}
			assert.Equal(t, e.Tool, e.Code.Tool(), "code %s outside the tool namespace", e.Code)

			found, ok := request.Lookup(e.Tool, e.Name)
			assert.True(t, ok)
			assert.Same(t, e, found)

			found, ok = request.LookupCode(e.Tool, e.Code)
			assert.True(t, ok)
			assert.Same(t, e, found)
		})
	}

	assert.Equal(t, map[request.Tool]int{
		request.Core:      20,
		request.Memcheck:  15,
		request.Callgrind: 6,
		request.Helgrind:  1,
		request.DRD:       10,
	}, perTool)
}

func TestRegistry_VerifiedSubset(t *testing.T) {
	var verified []string
	for _, e := range request.Entries() {
		if e.Verified {
			verified = append(verified, e.String())
		}
	}

	assert.ElementsMatch(t, []string{
		"core.RUNNING_ON_VALGRIND",
		"core.COUNT_ERRORS",
		"memcheck.MAKE_MEM_NOACCESS",
		"memcheck.MAKE_MEM_UNDEFINED",
		"memcheck.MAKE_MEM_DEFINED",
		"memcheck.CHECK_MEM_IS_ADDRESSABLE",
		"memcheck.CHECK_MEM_IS_DEFINED",
		"memcheck.DO_LEAK_CHECK",
		"memcheck.COUNT_LEAKS",
		"memcheck.COUNT_LEAK_BLOCKS",
	}, verified)
}

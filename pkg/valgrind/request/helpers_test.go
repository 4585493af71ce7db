package request

import "testing"

// registerForTest registers e and removes it again when the test ends, so the
// table tests can run with -count > 1.
func registerForTest(t *testing.T, e *Entry) *Entry {
	t.Helper()
	Register(e)
	t.Cleanup(func() {
		table.Lock()
		defer table.Unlock()
		delete(table.byName, entryKey{tool: e.Tool, name: e.Name})
		delete(table.byCode[e.Tool], e.Code)
	})
	return e
}

//go:build !valgrind_noop && !(amd64 && (linux || darwin || freebsd)) && !(386 && (linux || freebsd))

package request

// Client requests are only defined for 386 and amd64 on linux, darwin and
// freebsd. Build with -tags valgrind_noop to link the no-op fallback instead.
var _ = clientRequestsNeedX86LinuxDarwinOrFreeBSD_buildWithTagValgrindNoop

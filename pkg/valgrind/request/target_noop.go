//go:build valgrind_noop && !(amd64 && (linux || darwin || freebsd)) && !(386 && (linux || freebsd))

package request

import "runtime"

var target = TargetInfo{
	Arch:   runtime.GOARCH,
	Native: false,
}

// trap has no magic sequence on this target; every request is unsupervised.
func trap(def Word, _ *Frame) Word {
	return def
}

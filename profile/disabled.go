//go:build !pprof

package profile

import "iter"

// Modes returns no modes when built without the pprof tag.
func Modes() iter.Seq[string] {
	return func(func(string) bool) {}
}

func start(string, string, bool) interface{ Stop() } { return ignore{} }

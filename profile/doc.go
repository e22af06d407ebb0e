// Package profile provides optional runtime profiling for varz using
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the pprof build tag:
//
//	go build -tags pprof .
//	varz --pprof-mode=cpu --pprof-dir=/tmp/profiles resolve '${x}'
//
// Without the tag, [Modes] is empty and [Config.Start] always returns a
// no-op. With the tag, [net/http/pprof] handlers are also registered on
// [net/http.DefaultServeMux].
//
// A profile written to the output directory is named after its mode
// (cpu.pprof, mem.pprof) and is read with go tool pprof:
//
//	go tool pprof -http=: ./varz /tmp/profiles/cpu.pprof
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

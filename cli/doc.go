// Package cli contains the command line interface for varz.
//
// # Usage
//
// Variables are loaded from YAML variable files and command-line
// assignments, then referenced by the command arguments:
//
//	varz -f vars.yaml -v 'name=world' 'Hello, ${name}!'
//	varz -f vars.yaml get '@{hosts}' '&{limits}'
//	varz -f vars.yaml list host
//	varz -f vars.yaml repl --watch
//
// Files are loaded in order and "-" reads standard input. Assignments given
// with --var are applied after all files.
//
// # Configuration
//
// Flag defaults are read from, in increasing precedence:
//
//   - config.json in the configuration directory, in Kong's JSON format
//   - config.yaml in the configuration directory, a variable file whose
//     &{config} dictionary maps flag names to values
//   - environment variables named after the flag, e.g. VARZ_LOG_LEVEL
//
// Command-line flags take precedence over all of them. The init command
// writes config.yaml from the current flag values:
//
//	varz --log-level=debug init --force
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, none, etc.)
//   - --[no-]log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize log output
//
// Logging flags are applied before the remaining arguments are parsed, so
// they affect messages produced while parsing.
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o varz .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: the pprof
//     directory in the cache directory)
package cli

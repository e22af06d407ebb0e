// Package cmd implements the varz subcommands.
//
// Every command resolves against a [variables.Store] built from the global
// --file and --var flags, which the cli package stores in the command
// context with [WithSources].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"
)

// ConfigName is the name of the dictionary variable in the configuration
// file that provides flag defaults.
const ConfigName = "config"

// Package varfile loads variables from YAML documents into a
// [variables.Store].
//
// A variable file is a single mapping whose keys are variable names:
//
//	greeting: Hello
//	${name}: world
//	message: ${greeting}, ${name}!
//	'@{hosts}': [alpha, beta]
//	limits:
//	  cpu: 2
//	  mem: ${EMPTY}
//
// Entries are assigned in document order, and by default each value is
// resolved against the entries before it, so message above is stored as
// "Hello, world!".
//
// Keys starting with @ or & must be quoted, as both are YAML indicators.
package varfile

// Package schema models the service-native schema documents produced by
// exporters: an in-memory document tree plus the capability gaps recorded
// while rendering it. The package also provides a canonical JSON encoding so
// that exporting the same agent twice yields byte-identical output, aside
// from the explicitly nondeterministic identifier fields the target formats
// require.
package schema

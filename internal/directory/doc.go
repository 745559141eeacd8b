// Package directory resolves human-readable municipality names to the search
// codes used by the registry's search form.
//
// A Directory is built once at start-up from an immutable list of entries
// and is then passed to the components that need it. Online runs build it
// from the options of the registry's live search form. Offline runs use a
// YAML file saved by "antennascan municipalities --save" or the embedded
// names-only table. Lookups never touch the network.
//
// Resolution order:
//  1. exact match on the display name
//  2. match ignoring case, accents and a leading "Δήμος"
//  3. a unique partial match on the folded form
//
// More than one partial candidate is rejected rather than guessed.
package directory

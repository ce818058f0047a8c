// Package registry provides the glue between program files and compiled node
// logic.
//
// A program names its nodes by patch path ("xod/core/flip-flop"). The Registry
// maps every such path to a Patch: the node's pins and its compiled
// evaluation function, plus the declarations the scheduler cares about (uses
// timeouts, is a defer node, is a tweak node).
//
// Modules register their patches once at startup. Registration panics on
// duplicates, and Validate checks every patch for internal consistency before
// any program is built against the registry.
package registry

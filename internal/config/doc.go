// Package config defines the format-agnostic model of a program: constants and
// nodes in declaration order, with every node input either linked to another
// node's output, bound to a named constant or set to a literal.
//
// The model is what the builder compiles into an engine.Program. Concrete
// loaders, such as the HCL one, live in separate packages and implement
// Loader.
package config

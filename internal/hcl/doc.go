// Package hcl provides the HCL implementation of config.Loader. It parses
// program files, decodes their blocks through the schema package and
// translates them into the format-agnostic config.Program.
//
// Node inputs are written as attributes of an 'inputs' block. A reference of
// the form node.<name>.<pin> links the input to another node's output,
// constant.<name> binds it to a declared constant, and any other expression
// must evaluate, without variables, to a literal value.
package hcl

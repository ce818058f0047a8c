/*
Package builder compiles a loaded config.Program against a registry into a
ready-to-run engine.Program.

The construction is a multi-phase process:

 1. Node creation: every node block is resolved to its registered patch and
    assigned an id, either the explicit one or its declaration index. Node
    names and ids must be unique.

 2. Linking: every input binding is resolved. Links name an output of an
    earlier node (or of a defer node anywhere) and are type checked.
    Constant references and literals become engine constants converted to the
    pin's type. Value inputs left unbound are bound to an implicit constant
    holding the pin default, so they read as fresh on the first transaction
    only. Unbound pulse inputs stay unlinked and never fire.

 3. Program assembly: the collected specs go to engine.NewProgram, which
    enforces the single forward pass order. Tweak nodes are gathered into the
    target table the debug channel decodes against.

All problems found in a phase are reported together.
*/
package builder

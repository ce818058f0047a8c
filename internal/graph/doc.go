// Package graph holds the static edge table of a compiled program.
//
// The table answers two questions for the scheduler:
//   - for every output pin, which input pins it feeds and which dirty bit
//     selects it (fan-out);
//   - for every input pin, where its value comes from (binding): another
//     node's output, a constant, or nothing.
//
// A Table is populated once while a program is built and frozen afterwards.
// There is no runtime rewiring; every accessor on a frozen table is read-only
// and allocation free.
package graph

// Package tweak implements the debug channel that lets an external tool
// overwrite the output of a tweak node while the program runs.
//
// Commands are single lines:
//
//	+XOD:<nodeId>:<payload>\r\n
//
// The payload is read according to the type of the addressed tweak node:
// number nodes take a decimal value, byte nodes an integer truncated to eight
// bits, boolean nodes an integer where anything but zero is true, string nodes
// the raw bytes up to the carriage return, cut at the node's buffer length.
// Pulse nodes take no payload. Lines without the prefix, with a malformed id or
// naming a node that is not a tweak node are dropped.
//
// Channel sources (a serial device, stdin, a socket.io event) write into a
// LineBuffer from their own goroutines. The Injector polls that buffer at the
// start of every transaction and applies at most one command per transaction,
// so the scheduler itself never blocks on the channel.
package tweak

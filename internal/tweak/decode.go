package tweak

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/xodrun/internal/node"
	"github.com/zclconf/go-cty/cty"
)

// Prefix starts every tweak command.
const Prefix = "+XOD:"

var (
	ErrNoPrefix    = errors.New("no command prefix")
	ErrMalformed   = errors.New("malformed command")
	ErrUnknownNode = errors.New("not a tweak node")
)

// Command is a decoded tweak.
type Command struct {
	Node  node.ID
	Type  Type
	Value cty.Value
}

// Decode parses one line against targets. Anything before the prefix is
// skipped, as is anything after the payload.
func Decode(line []byte, targets Targets) (Command, error) {
	at := bytes.Index(line, []byte(Prefix))
	if at < 0 {
		return Command{}, ErrNoPrefix
	}
	rest := line[at+len(Prefix):]

	id, n := scanInt(rest)
	if n == 0 || id < 0 || id > int64(^uint32(0)) {
		return Command{}, fmt.Errorf("%w: bad node id", ErrMalformed)
	}
	rest = rest[n:]
	spec, ok := targets[node.ID(id)]
	if !ok {
		return Command{}, fmt.Errorf("node %d: %w", id, ErrUnknownNode)
	}

	cmd := Command{Node: node.ID(id), Type: spec.Type}
	switch spec.Type {
	case Pulse:
		cmd.Value = cty.True
		return cmd, nil
	case String:
		cmd.Value = cty.StringVal(readString(rest, spec.StringLength))
		return cmd, nil
	}

	rest = bytes.TrimLeft(rest, ": \t")
	switch spec.Type {
	case Number:
		f, n := scanFloat(rest)
		if n == 0 {
			return Command{}, fmt.Errorf("%w: node %d: bad number", ErrMalformed, id)
		}
		cmd.Value = cty.NumberFloatVal(f)
	case Byte:
		v, n := scanInt(rest)
		if n == 0 {
			return Command{}, fmt.Errorf("%w: node %d: bad byte", ErrMalformed, id)
		}
		cmd.Value = cty.NumberIntVal(int64(uint8(v)))
	case Boolean:
		v, n := scanInt(rest)
		if n == 0 {
			return Command{}, fmt.Errorf("%w: node %d: bad boolean", ErrMalformed, id)
		}
		cmd.Value = cty.BoolVal(v != 0)
	default:
		return Command{}, fmt.Errorf("node %d: %w", id, ErrUnknownNode)
	}
	return cmd, nil
}

// readString drops the separator following the id and returns the bytes up
// to the carriage return, at most limit of them.
func readString(rest []byte, limit int) string {
	if len(rest) > 0 {
		rest = rest[1:]
	}
	if i := bytes.IndexByte(rest, '\r'); i >= 0 {
		rest = rest[:i]
	}
	if limit >= 0 && len(rest) > limit {
		rest = rest[:limit]
	}
	return strings.ToValidUTF8(string(rest), "")
}

// scanInt reads an optionally signed decimal integer at the start of b and
// returns it with the number of bytes consumed.
func scanInt(b []byte) (int64, int) {
	n := 0
	if n < len(b) && b[n] == '-' {
		n++
	}
	digits := n
	for n < len(b) && b[n] >= '0' && b[n] <= '9' {
		n++
	}
	if n == digits {
		return 0, 0
	}
	v, err := strconv.ParseInt(string(b[:n]), 10, 64)
	if err != nil {
		return 0, 0
	}
	return v, n
}

// scanFloat reads a decimal number with an optional fraction at the start of b.
func scanFloat(b []byte) (float64, int) {
	n := 0
	if n < len(b) && b[n] == '-' {
		n++
	}
	start := n
	for n < len(b) && b[n] >= '0' && b[n] <= '9' {
		n++
	}
	if n < len(b) && b[n] == '.' {
		n++
		for n < len(b) && b[n] >= '0' && b[n] <= '9' {
			n++
		}
	}
	if n == start || (n == start+1 && b[start] == '.') {
		return 0, 0
	}
	v, err := strconv.ParseFloat(string(b[:n]), 64)
	if err != nil {
		return 0, 0
	}
	return v, n
}

// Reason names the class of a decode error for logs and metrics.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrNoPrefix):
		return "no_prefix"
	case errors.Is(err, ErrUnknownNode):
		return "unknown_node"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	}
	return "rejected"
}

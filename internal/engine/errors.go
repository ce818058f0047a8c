package engine

import (
	"errors"
	"fmt"

	"github.com/vk/xodrun/internal/node"
)

var (
	// ErrUnknownNode is returned when a node id is not part of the program.
	ErrUnknownNode = errors.New("unknown node")
	// ErrNoSuchOutput is returned for an output index a node does not have.
	ErrNoSuchOutput = errors.New("no such output")
	// ErrDuplicateID is returned when two nodes share an id.
	ErrDuplicateID = errors.New("duplicate node id")
	// ErrBackwardLink is returned when a link from a non-defer node points at a
	// node that is not strictly later in evaluation order.
	ErrBackwardLink = errors.New("link does not point forward in evaluation order")
	// ErrNoEvaluate is returned for a node without an evaluation function.
	ErrNoEvaluate = errors.New("node has no evaluate function")
	// ErrUnknownConstant is returned when an input is bound to a constant
	// index outside the constant list.
	ErrUnknownConstant = errors.New("unknown constant")
)

// PanicError is the node-scoped error recorded when an evaluation panics.
type PanicError struct {
	Node  node.ID
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("node %s panicked: %v", e.Node, e.Value)
}

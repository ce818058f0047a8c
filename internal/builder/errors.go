package builder

import "errors"

var (
	ErrUnknownPatch    = errors.New("unknown patch")
	ErrUnknownNode     = errors.New("unknown node")
	ErrUnknownPin      = errors.New("unknown pin")
	ErrUnknownConstant = errors.New("unknown constant")
	ErrDuplicateName   = errors.New("duplicate name")
	ErrTypeMismatch    = errors.New("type mismatch")
)

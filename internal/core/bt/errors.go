package bt

import "errors"

var (
	ErrNoRoot           = errors.New("bt: tree has no root")
	ErrMultipleRoots    = errors.New("bt: tree already has a root")
	ErrUnknownNode      = errors.New("bt: unknown node")
	ErrChildOwned       = errors.New("bt: child already has a parent")
	ErrCycle            = errors.New("bt: edge would create a cycle")
	ErrKindMismatch     = errors.New("bt: operation not supported by node kind")
	ErrRootAsChild      = errors.New("bt: root cannot be a child")
	ErrMissingChild     = errors.New("bt: decorator has no child")
	ErrAlreadyBound     = errors.New("bt: tree already bound to another host")
	ErrNilHost          = errors.New("bt: nil host")
	ErrUnknownKind      = errors.New("bt: unknown node kind")
	ErrUnknownStatus    = errors.New("bt: unknown status")
	ErrUnknownSelection = errors.New("bt: unknown selection strategy")
	ErrDuplicateID      = errors.New("bt: duplicate node id")
)

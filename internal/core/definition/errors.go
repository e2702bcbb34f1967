package definition

import "errors"

var (
	ErrUnknownFormat = errors.New("definition: unknown format")
	ErrMissingRoot   = errors.New("definition: root is not set")
	ErrUnknownNode   = errors.New("definition: reference to undefined node")
	ErrDuplicateNode = errors.New("definition: node defined twice")
	ErrInvalidNode   = errors.New("definition: invalid node")
)

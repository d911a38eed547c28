package engine

import "errors"

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidLayout    = errors.New("invalid layout")
	ErrInvalidState     = errors.New("invalid game state")
)

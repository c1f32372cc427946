package connection

import "errors"

var (
	ErrNotFound      = errors.New("connection not found")
	ErrAlreadyExists = errors.New("connection already exists")
	ErrNotBound      = errors.New("connection not bound to a room")
	ErrAlreadyBound  = errors.New("connection already bound to another room")
)

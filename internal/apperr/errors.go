package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyNote    = errors.New("note is empty")
	ErrInvalidNote  = errors.New("invalid note")
	ErrInvalidInput = errors.New("invalid input")
)

package server

import "errors"

var (
	ErrNoFile           = errors.New("no file provided")
	ErrNotAnAlsFile     = errors.New("file must be an .als file")
	ErrInvalidSelection = errors.New("invalid selection")
)

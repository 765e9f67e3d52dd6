package project

import "errors"

// ErrNotFound indicates an unknown or expired project id.
var ErrNotFound = errors.New("project not found")

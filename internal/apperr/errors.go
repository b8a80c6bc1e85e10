package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrNoSession      = errors.New("no session loaded")
	ErrUnknownDataset = errors.New("unknown snapshot or entity")
)

package domain

import "errors"

var (
	ErrUnknownPreset    = errors.New("unknown preset")
	ErrEmptyImage       = errors.New("image is empty")
)

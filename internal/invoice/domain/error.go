package domain

import "errors"

var (
	ErrNotFound = errors.New("invoice not found")
	ErrInvalid  = errors.New("invalid invoice data")
)

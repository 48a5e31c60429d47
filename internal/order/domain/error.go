package domain

import "errors"

var (
	ErrNotFound = errors.New("order not found")
	ErrInvalid  = errors.New("invalid order data")
)

package client

import "errors"

var (
	ErrUnavailable  = errors.New("sync server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

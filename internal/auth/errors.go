package auth

import "errors"

var (
	ErrKeyRequired       = errors.New("Key id and secret are required")
	ErrUnknownKey        = errors.New("Unknown key")
	ErrIncorrectSecret   = errors.New("Incorrect secret")
	ErrNotAuthenticated  = errors.New("Not authenticated")
	ErrInvalidCapability = errors.New("Invalid capability")
)

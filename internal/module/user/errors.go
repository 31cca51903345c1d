package user

import "errors"

// Module errors.
var (
	ErrUserNotFound = errors.New("user not found")
)

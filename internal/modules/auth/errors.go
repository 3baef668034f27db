package auth

import "errors"

var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("username or email already taken")
	ErrRegistrationClosed = errors.New("registration requires an administrator")
)

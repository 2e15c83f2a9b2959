package auth

import "errors"

var (
	ErrValidation         = errors.New("username and password are required")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrWeakPassword       = errors.New("password must be 6-15 alphanumeric characters with at least one letter and one digit")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWrongOldPassword   = errors.New("old password is incorrect")
)

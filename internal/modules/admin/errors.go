package admin

import "errors"

var (
	ErrInvalidAction           = errors.New("action must be approve or reject")
	ErrNotFound                = errors.New("rental request not found")
	ErrInvalidStatusTransition = errors.New("only pending requests can be decided")
	ErrUserNotFound            = errors.New("user not found")
	ErrSelfManagement          = errors.New("administrators cannot modify their own account")
)

package rental

import "errors"

var (
	ErrMissingFields   = errors.New("please fill in all required fields")
	ErrUnknownLocation = errors.New("unknown classroom")
	ErrUnknownSlot     = errors.New("unknown time slot")
	ErrBadDate         = errors.New("date must be in YYYY-MM-DD format")
	ErrPastDate        = errors.New("date must not be in the past")
	ErrBadPhone        = errors.New("phone must be a 10-digit mobile number starting with 09")
	ErrBadEmail        = errors.New("a valid email address is required")
	ErrSlotStarted     = errors.New("this time slot has already started")
	ErrSlotTaken       = errors.New("this slot was just taken, please pick another")
	ErrNotFound        = errors.New("rental request not found")
)

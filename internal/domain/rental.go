package domain

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// RentalRequest is a classroom rental application. A slot is occupied while a
// request for it is pending or approved; rejected requests are kept for audit
// but free the slot immediately.
type RentalRequest struct {
	ID          int64         `json:"id"`
	Reference   string        `json:"reference"`
	Location    string        `json:"location"`
	Date        time.Time     `json:"date"`
	TimeSlot    string        `json:"time_slot"`
	Name        string        `json:"name"`
	Phone       string        `json:"phone"`
	Email       string        `json:"email"`
	Note        string        `json:"note,omitempty"`
	Status      RequestStatus `json:"status"`
	SubmittedAt time.Time     `json:"submitted_at"`
	DecidedAt   *time.Time    `json:"decided_at,omitempty"`
}

// Location is a bookable room. The set is small and seeded, not user-managed.
type Location struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

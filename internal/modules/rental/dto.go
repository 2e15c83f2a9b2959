package rental

// SubmitRequest carries the booking form fields. Validation happens in the
// service so the first failing rule determines the reported reason.
type SubmitRequest struct {
	Location string `json:"location"`
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Note     string `json:"note"`
}

type SubmitResponse struct {
	Reference   string `json:"reference"`
	Status      string `json:"status"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	TimeSlot    string `json:"time_slot"`
	SubmittedAt string `json:"submitted_at"`
}

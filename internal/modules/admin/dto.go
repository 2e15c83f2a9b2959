package admin

type DecisionRequest struct {
	Action string `json:"action" binding:"required"`
}

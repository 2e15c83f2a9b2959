package admin

import (
	"errors"
	"net/http"
	"strconv"

	"roomrental/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the review endpoints. The group must already carry
// auth and admin-role middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/rentals", h.ListRequests)
	rg.POST("/rentals/:id/decision", h.Decide)
	rg.GET("/users", h.ListUsers)
	rg.POST("/users/:id/toggle-role", h.ToggleUserRole)
	rg.DELETE("/users/:id", h.DeleteUser)
}

func (h *Handler) ListRequests(c *gin.Context) {
	requests, err := h.service.ListRequests(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load rental requests")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"requests": requests})
}

func (h *Handler) Decide(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request id")
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	r, err := h.service.Decide(c.Request.Context(), id, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAction):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		case errors.Is(err, ErrInvalidStatusTransition):
			response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to apply decision")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"request": r})
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load users")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"users": users})
}

func (h *Handler) ToggleUserRole(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user id")
		return
	}

	user, err := h.service.ToggleUserRole(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.writeUserError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user id")
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		h.writeUserError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) writeUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSelfManagement):
		response.Error(c, http.StatusConflict, "SELF_MANAGEMENT", err.Error())
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update user")
	}
}

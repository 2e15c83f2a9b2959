package rental

import (
	"errors"
	"net/http"

	"roomrental/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/rentals/locations", h.Locations)
	rg.GET("/rentals/slots", h.AvailableSlots)
	rg.GET("/rentals/full-dates", h.FullyBookedDates)
	rg.POST("/rentals", h.Submit)
	rg.GET("/rentals/:reference", h.GetByReference)
}

func (h *Handler) Locations(c *gin.Context) {
	locations, err := h.service.Locations(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load classrooms")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"locations": locations})
}

func (h *Handler) AvailableSlots(c *gin.Context) {
	location := c.Query("location")
	date := c.Query("date")
	if location == "" || date == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "location and date are required")
		return
	}

	slots, err := h.service.AvailableSlots(c.Request.Context(), location, date)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"slots": slots})
}

func (h *Handler) FullyBookedDates(c *gin.Context) {
	location := c.Query("location")
	if location == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "location is required")
		return
	}

	dates, err := h.service.FullyBookedDates(c.Request.Context(), location)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"dates": dates})
}

func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	r, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"request": SubmitResponse{
			Reference:   r.Reference,
			Status:      string(r.Status),
			Location:    r.Location,
			Date:        r.Date.Format("2006-01-02"),
			TimeSlot:    r.TimeSlot,
			SubmittedAt: r.SubmittedAt.Format(timeFormat),
		},
	})
}

func (h *Handler) GetByReference(c *gin.Context) {
	r, err := h.service.GetByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"request": gin.H{
			"reference": r.Reference,
			"status":    r.Status,
			"location":  r.Location,
			"date":      r.Date.Format("2006-01-02"),
			"time_slot": r.TimeSlot,
		},
	})
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrUnknownLocation),
		errors.Is(err, ErrUnknownSlot),
		errors.Is(err, ErrBadDate),
		errors.Is(err, ErrPastDate),
		errors.Is(err, ErrBadPhone),
		errors.Is(err, ErrBadEmail):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrSlotTaken), errors.Is(err, ErrSlotStarted):
		response.Error(c, http.StatusConflict, "SLOT_CONFLICT", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong, please try again")
	}
}

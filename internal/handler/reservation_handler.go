package handler

import (
	"errors"
	"net/http"

	"train-ticket-engine/internal/model"
	"train-ticket-engine/internal/service"
	apperrors "train-ticket-engine/pkg/app_errors"
	"train-ticket-engine/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	service service.ReservationService
}

func NewReservationHandler(service service.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("reservations", h.Reserve)
		router.DELETE("reservations/:id", h.Release)
	}
}

func (h *ReservationHandler) Reserve(c *gin.Context) {
	var req model.ReserveRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	reservationID, err := h.service.Reserve(c, req)
	if err != nil {
		h.handleError(c, err, "Reserve")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reservation_id": reservationID})
}

func (h *ReservationHandler) Release(c *gin.Context) {
	reservationID := c.Param("id")

	if err := h.service.Release(c, reservationID); err != nil {
		h.handleError(c, err, "Release")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReservationHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrInvalidParameters):
		log.Warn("Invalid parameters")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parameters"})
	case errors.Is(err, apperrors.ErrNotServed):
		log.Warn("Train does not serve the station pair")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Train does not serve the requested stations"})
	case errors.Is(err, apperrors.ErrStationNotFound):
		log.Warn("Station not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Station not found"})
	case errors.Is(err, apperrors.ErrTrainNotFound):
		log.Warn("Train not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Train not found"})
	case errors.Is(err, apperrors.ErrInsufficientCapacity):
		log.Warn("Insufficient capacity")
		c.JSON(http.StatusConflict, gin.H{"error": "Insufficient seat capacity"})
	case errors.Is(err, apperrors.ErrUnknownReservation):
		log.Warn("Unknown reservation")
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown reservation"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

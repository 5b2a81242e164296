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

type SearchHandler struct {
	service service.SearchService
}

func NewSearchHandler(service service.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("tickets/search", h.Search)
	}
}

func (h *SearchHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if err := BindQuery(c, &req); err != nil {
		return
	}

	result, err := h.service.Search(c, req)
	if err != nil {
		h.handleError(c, err, "Search")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SearchHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrInvalidParameters):
		log.Warn("Invalid parameters")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parameters"})
	case errors.Is(err, apperrors.ErrStationNotFound):
		log.Warn("Station not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Station not found"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"train-ticket-engine/internal/handler"
	"train-ticket-engine/internal/model"
	apperrors "train-ticket-engine/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupSearchTestRouter(mockService *SearchServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	searchHandler := handler.NewSearchHandler(mockService)
	searchHandler.RegisterRoutes(router)

	return router
}

func TestSearch(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := NewSearchServiceMock()
		router := setupSearchTestRouter(mockService)

		mockService.On("Search", mock.Anything, mock.MatchedBy(func(req model.SearchRequest) bool {
			return req.From == "北京南" && req.To == "上海虹橋" && req.Date == "2026-10-01" &&
				req.Page == 1 && req.PageSize == 10
		})).Return(&model.SearchResult{
			Meta: model.Meta{TotalItems: 1, TotalPages: 1, CurrentPage: 1, PageSize: 10},
			Data: []*model.TicketInfo{{
				TrainNumber:   "G1",
				TrainType:     model.TrainTypeHighSpeed,
				FromStation:   "北京南",
				ToStation:     "上海虹橋",
				DepartureTime: "09:00",
				ArrivalTime:   "13:28",
				ArrivalDay:    model.ArrivalSameDay,
			}},
		}, nil).Once()

		// request
		req := httptest.NewRequest("GET", "/api/v1/tickets/search?from=北京南&to=上海虹橋&date=2026-10-01", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		// assert
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"train_number":"G1"`)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - ErrInvalidParameters", func(t *testing.T) {
		mockService := NewSearchServiceMock()
		router := setupSearchTestRouter(mockService)

		mockService.On("Search", mock.Anything, mock.Anything).Return(nil, apperrors.ErrInvalidParameters).Once()

		req := httptest.NewRequest("GET", "/api/v1/tickets/search?from=北京南&to=北京南&date=2026-10-01", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - ErrStationNotFound", func(t *testing.T) {
		mockService := NewSearchServiceMock()
		router := setupSearchTestRouter(mockService)

		mockService.On("Search", mock.Anything, mock.Anything).Return(nil, apperrors.ErrStationNotFound).Once()

		req := httptest.NewRequest("GET", "/api/v1/tickets/search?from=nowhere&to=上海虹橋&date=2026-10-01", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - ErrInternalServerError", func(t *testing.T) {
		mockService := NewSearchServiceMock()
		router := setupSearchTestRouter(mockService)

		mockService.On("Search", mock.Anything, mock.Anything).Return(nil, apperrors.ErrInternalServerError).Once()

		req := httptest.NewRequest("GET", "/api/v1/tickets/search?from=北京南&to=上海虹橋&date=2026-10-01", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		mockService.AssertExpectations(t)
	})
}

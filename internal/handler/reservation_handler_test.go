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

func setupReservationTestRouter(mockService *ReservationServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	reservationHandler := handler.NewReservationHandler(mockService)
	reservationHandler.RegisterRoutes(router)

	return router
}

func validReserveRequest() model.ReserveRequest {
	return model.ReserveRequest{
		TrainNumber: "G1",
		Date:        "2026-10-01",
		From:        "北京南",
		To:          "上海虹橋",
		SeatClass:   model.SeatClassSecond,
		Count:       2,
	}
}

func TestReserve(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := NewReservationServiceMock()
		router := setupReservationTestRouter(mockService)

		mockService.On("Reserve", mock.Anything, validReserveRequest()).
			Return("9f3c2d1e-0000-4000-8000-000000000001", nil).Once()

		// request
		req := createJSONHTTPRequest("POST", "/api/v1/reservations", validReserveRequest())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		// assert
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "9f3c2d1e-0000-4000-8000-000000000001")
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - ErrInsufficientCapacity", func(t *testing.T) {
		mockService := NewReservationServiceMock()
		router := setupReservationTestRouter(mockService)

		mockService.On("Reserve", mock.Anything, mock.Anything).Return("", apperrors.ErrInsufficientCapacity).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/reservations", validReserveRequest())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - ErrNotServed", func(t *testing.T) {
		mockService := NewReservationServiceMock()
		router := setupReservationTestRouter(mockService)

		mockService.On("Reserve", mock.Anything, mock.Anything).Return("", apperrors.ErrNotServed).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/reservations", validReserveRequest())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - ErrTrainNotFound", func(t *testing.T) {
		mockService := NewReservationServiceMock()
		router := setupReservationTestRouter(mockService)

		mockService.On("Reserve", mock.Anything, mock.Anything).Return("", apperrors.ErrTrainNotFound).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/reservations", validReserveRequest())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - BindingError", func(t *testing.T) {
		mockService := NewReservationServiceMock()
		router := setupReservationTestRouter(mockService)

		req := createJSONHTTPRequest("POST", "/api/v1/reservations", InvalidJSON)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Reserve")
	})
}

func TestRelease(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := NewReservationServiceMock()
		router := setupReservationTestRouter(mockService)

		mockService.On("Release", mock.Anything, "abc-123").Return(nil).Once()

		// request
		req := httptest.NewRequest("DELETE", "/api/v1/reservations/abc-123", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		// assert
		assert.Equal(t, http.StatusNoContent, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - ErrUnknownReservation", func(t *testing.T) {
		mockService := NewReservationServiceMock()
		router := setupReservationTestRouter(mockService)

		mockService.On("Release", mock.Anything, "no-such-id").Return(apperrors.ErrUnknownReservation).Once()

		req := httptest.NewRequest("DELETE", "/api/v1/reservations/no-such-id", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertExpectations(t)
	})
}

package service

import (
	"context"
	"time"

	"train-ticket-engine/internal/inventory"
	"train-ticket-engine/internal/model"
	"train-ticket-engine/internal/topology"
	apperrors "train-ticket-engine/pkg/app_errors"

	"github.com/google/uuid"
)

// ReservationService 訂座流程呼叫的入口：引擎只負責容量限制，何時確認訂單由外部決定
type ReservationService interface {
	// Reserve 在起訖站覆蓋的每個區段保留 count 張，成功回傳保留編號
	Reserve(ctx context.Context, req model.ReserveRequest) (string, error)
	// Release 釋放保留並歸還庫存
	Release(ctx context.Context, reservationID string) error
}

type ReservationServiceImpl struct {
	topology *topology.RouteTopology
	store    inventory.SeatInventoryStore
}

func NewReservationService(topo *topology.RouteTopology, store inventory.SeatInventoryStore) ReservationService {
	return &ReservationServiceImpl{
		topology: topo,
		store:    store,
	}
}

func (s *ReservationServiceImpl) Reserve(ctx context.Context, req model.ReserveRequest) (string, error) {
	if req.Count < 1 || req.From == "" || req.To == "" || req.From == req.To {
		return "", apperrors.ErrInvalidParameters
	}
	if !req.SeatClass.IsValid() {
		return "", apperrors.ErrInvalidParameters
	}
	if _, err := time.Parse(dateLayout, req.Date); err != nil {
		return "", apperrors.ErrInvalidParameters
	}

	legs, err := s.topology.LegsCovering(req.TrainNumber, req.From, req.To)
	if err != nil {
		return "", err
	}

	reservationID := uuid.New().String()
	if err := s.store.Reserve(ctx, req.TrainNumber, req.Date, legs, req.SeatClass, req.Count, reservationID); err != nil {
		return "", err
	}
	return reservationID, nil
}

func (s *ReservationServiceImpl) Release(ctx context.Context, reservationID string) error {
	if reservationID == "" {
		return apperrors.ErrInvalidParameters
	}
	return s.store.Release(ctx, reservationID)
}

package inventory

import (
	"context"
	"sync"
	"time"

	"train-ticket-engine/internal/model"
	"train-ticket-engine/internal/queue"
	apperrors "train-ticket-engine/pkg/app_errors"
	"train-ticket-engine/pkg/logger"

	"go.uber.org/zap"
)

// SeatInventoryStore 車次座位庫存的唯一寫入者。
// 以 (車次, 乘車日) 為粒度互斥：同一車次同日的衝突保留互相序列化，
// 不同車次或不同日期的操作互不阻塞。
type SeatInventoryStore interface {
	// 建立 (車次, 乘車日) 的庫存：各等級容量在所有區段一致(固定編組)
	Seed(trainNo, date string, legCount int, capacities map[model.SeatClass]int) error
	// 覆寫單一等級的逐區段容量(中途加掛/解編車廂時使用)
	SeedLegs(trainNo, date string, seatClass model.SeatClass, capacities []int) error
	// 查詢剩餘座位：取所有區段中 capacity - reserved 的最小值(瓶頸區段)
	QueryRemaining(ctx context.Context, trainNo, date string, legs []int, seatClass model.SeatClass) (int, error)
	// 保留座位：全部區段一次扣減，任一區段不足則全部不動
	Reserve(ctx context.Context, trainNo, date string, legs []int, seatClass model.SeatClass, count int, reservationID string) error
	// 釋放保留：將原保留觸及的每個區段加回，重複釋放回傳 ErrUnknownReservation
	Release(ctx context.Context, reservationID string) error
	// 查詢 (車次, 乘車日) 的異動版本：每次庫存寫入遞增，快取寫入方據此判斷快照是否過期
	Version(trainNo, date string) (uint64, error)
}

type slot struct {
	capacity int
	reserved int
}

// run 單一 (車次, 乘車日) 的庫存，mu 序列化該車次當日的所有寫入
type run struct {
	mu   sync.Mutex
	legs []map[model.SeatClass]*slot
	// 異動版本：每次寫入遞增，重種時延續舊值保持單調
	version uint64
}

type MemorySeatInventoryStoreImpl struct {
	mu   sync.RWMutex
	runs map[model.TrainDate]*run

	resMu        sync.Mutex
	reservations map[string]*model.Reservation

	// 異動後發佈失效事件；nil 時不發佈(測試用)
	invalidations queue.InvalidationQueue
}

func NewMemorySeatInventoryStore(invalidations queue.InvalidationQueue) *MemorySeatInventoryStoreImpl {
	return &MemorySeatInventoryStoreImpl{
		runs:          make(map[model.TrainDate]*run),
		reservations:  make(map[string]*model.Reservation),
		invalidations: invalidations,
	}
}

func (s *MemorySeatInventoryStoreImpl) Seed(trainNo, date string, legCount int, capacities map[model.SeatClass]int) error {
	if legCount < 1 || len(capacities) == 0 {
		return apperrors.ErrInvalidParameters
	}
	for _, cap := range capacities {
		if cap < 0 {
			return apperrors.ErrInvalidParameters
		}
	}

	r := &run{legs: make([]map[model.SeatClass]*slot, legCount)}
	for i := range r.legs {
		r.legs[i] = make(map[model.SeatClass]*slot, len(capacities))
		for class, cap := range capacities {
			r.legs[i][class] = &slot{capacity: cap}
		}
	}

	key := model.TrainDate{TrainNumber: trainNo, Date: date}

	s.mu.Lock()
	if old, ok := s.runs[key]; ok {
		old.mu.Lock()
		r.version = old.version + 1
		old.mu.Unlock()
	}
	s.runs[key] = r
	s.mu.Unlock()

	// 重種即整批換新：舊保留指向已不存在的 slot，必須清出帳本，
	// 否則日後釋放會把 reserved 扣成負數、憑空多出座位
	s.resMu.Lock()
	for id, res := range s.reservations {
		if res.TrainNumber == trainNo && res.Date == date {
			delete(s.reservations, id)
		}
	}
	s.resMu.Unlock()

	// 排程刷新也是庫存異動，舊快取一樣要失效
	s.publishInvalidation(context.Background(), trainNo, date)
	return nil
}

func (s *MemorySeatInventoryStoreImpl) SeedLegs(trainNo, date string, seatClass model.SeatClass, capacities []int) error {
	r, err := s.run(trainNo, date)
	if err != nil {
		return err
	}
	if len(capacities) != len(r.legs) {
		return apperrors.ErrInvalidParameters
	}

	for _, cap := range capacities {
		if cap < 0 {
			return apperrors.ErrInvalidParameters
		}
	}

	r.mu.Lock()
	for i, cap := range capacities {
		if sl, ok := r.legs[i][seatClass]; ok {
			sl.capacity = cap
		} else {
			r.legs[i][seatClass] = &slot{capacity: cap}
		}
	}
	r.version++
	r.mu.Unlock()

	s.publishInvalidation(context.Background(), trainNo, date)
	return nil
}

func (s *MemorySeatInventoryStoreImpl) QueryRemaining(ctx context.Context, trainNo, date string, legs []int, seatClass model.SeatClass) (int, error) {
	r, err := s.run(trainNo, date)
	if err != nil {
		return 0, err
	}
	if len(legs) == 0 {
		return 0, apperrors.ErrInvalidParameters
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// 一個座位要能從頭坐到尾，必須在要求的每個區段都空著：
	// 可售數 = 各區段剩餘數的最小值，不是總和也不是平均
	remaining := -1
	for _, leg := range legs {
		if leg < 0 || leg >= len(r.legs) {
			return 0, apperrors.ErrInvalidParameters
		}
		sl, ok := r.legs[leg][seatClass]
		if !ok {
			// 該車次未配置此等級：回報精確錯誤，不得與售罄混淆
			return 0, apperrors.ErrInvalidParameters
		}
		free := sl.capacity - sl.reserved
		if remaining == -1 || free < remaining {
			remaining = free
		}
	}
	return remaining, nil
}

func (s *MemorySeatInventoryStoreImpl) Reserve(ctx context.Context, trainNo, date string, legs []int, seatClass model.SeatClass, count int, reservationID string) error {
	if count < 1 || len(legs) == 0 || reservationID == "" {
		return apperrors.ErrInvalidParameters
	}

	// 撞號不得覆寫帳本：否則前一筆扣掉的座位再也放不回來
	s.resMu.Lock()
	_, live := s.reservations[reservationID]
	s.resMu.Unlock()
	if live {
		return apperrors.ErrInvalidParameters
	}

	r, err := s.run(trainNo, date)
	if err != nil {
		return err
	}

	r.mu.Lock()
	// 先檢查全部區段，任一不足則不動任何 slot
	for _, leg := range legs {
		if leg < 0 || leg >= len(r.legs) {
			r.mu.Unlock()
			return apperrors.ErrInvalidParameters
		}
		sl, ok := r.legs[leg][seatClass]
		if !ok {
			r.mu.Unlock()
			return apperrors.ErrInvalidParameters
		}
		if sl.capacity-sl.reserved < count {
			r.mu.Unlock()
			return apperrors.ErrInsufficientCapacity
		}
	}
	for _, leg := range legs {
		r.legs[leg][seatClass].reserved += count
	}
	r.version++
	r.mu.Unlock()

	reservation := &model.Reservation{
		ID:          reservationID,
		TrainNumber: trainNo,
		Date:        date,
		SeatClass:   seatClass,
		FirstLeg:    legs[0],
		LastLeg:     legs[len(legs)-1],
		Count:       count,
		CreatedAt:   time.Now().UTC(),
	}

	s.resMu.Lock()
	_, dup := s.reservations[reservationID]
	if !dup {
		s.reservations[reservationID] = reservation
	}
	s.resMu.Unlock()

	// 兩筆相同編號同時通過前置檢查：後到者退回剛扣掉的座位
	if dup {
		r.mu.Lock()
		for _, leg := range legs {
			r.legs[leg][seatClass].reserved -= count
		}
		r.version++
		r.mu.Unlock()
		return apperrors.ErrInvalidParameters
	}

	s.publishInvalidation(ctx, trainNo, date)
	return nil
}

func (s *MemorySeatInventoryStoreImpl) Release(ctx context.Context, reservationID string) error {
	s.resMu.Lock()
	reservation, ok := s.reservations[reservationID]
	if !ok {
		s.resMu.Unlock()
		return apperrors.ErrUnknownReservation
	}
	delete(s.reservations, reservationID)
	s.resMu.Unlock()

	r, err := s.run(reservation.TrainNumber, reservation.Date)
	if err != nil {
		return err
	}

	r.mu.Lock()
	for _, leg := range reservation.Legs() {
		if sl, ok := r.legs[leg][reservation.SeatClass]; ok {
			sl.reserved -= reservation.Count
		}
	}
	r.version++
	r.mu.Unlock()

	s.publishInvalidation(ctx, reservation.TrainNumber, reservation.Date)
	return nil
}

func (s *MemorySeatInventoryStoreImpl) Version(trainNo, date string) (uint64, error) {
	r, err := s.run(trainNo, date)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version, nil
}

func (s *MemorySeatInventoryStoreImpl) run(trainNo, date string) (*run, error) {
	s.mu.RLock()
	r, ok := s.runs[model.TrainDate{TrainNumber: trainNo, Date: date}]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.ErrTrainNotFound
	}
	return r, nil
}

func (s *MemorySeatInventoryStoreImpl) publishInvalidation(ctx context.Context, trainNo, date string) {
	if s.invalidations == nil {
		return
	}
	event := model.InvalidationEvent{TrainNumber: trainNo, Date: date}
	if err := s.invalidations.Publish(ctx, event); err != nil {
		logger.WithComponent("inventory").Error("publish invalidation failed",
			zap.String("train", trainNo), zap.String("date", date), zap.Error(err))
	}
}

package availability

import (
	"context"
	"sort"
	"strconv"

	"train-ticket-engine/internal/inventory"
	"train-ticket-engine/internal/model"
	"train-ticket-engine/internal/topology"
)

// AvailabilityComputer 組合拓撲與庫存，產出單一車次的查詢結果投影
type AvailabilityComputer interface {
	// ComputeTicketInfo 計算車次在起訖站間的各等級剩餘座位；
	// 車次未覆蓋站對時回傳 ErrNotServed，由呼叫端剔除
	ComputeTicketInfo(ctx context.Context, trainNo, origin, dest, date string) (*model.TicketInfo, error)
}

type AvailabilityComputerImpl struct {
	topology *topology.RouteTopology
	store    inventory.SeatInventoryStore
	// 顯示門檻：剩餘低於此值顯示確切張數，否則只標示「有票」
	lowStockThreshold int
}

func NewAvailabilityComputer(topo *topology.RouteTopology, store inventory.SeatInventoryStore, lowStockThreshold int) AvailabilityComputer {
	return &AvailabilityComputerImpl{
		topology:          topo,
		store:             store,
		lowStockThreshold: lowStockThreshold,
	}
}

func (a *AvailabilityComputerImpl) ComputeTicketInfo(ctx context.Context, trainNo, origin, dest, date string) (*model.TicketInfo, error) {
	train, err := a.topology.Train(trainNo)
	if err != nil {
		return nil, err
	}

	legs, err := a.topology.LegsCovering(trainNo, origin, dest)
	if err != nil {
		return nil, err
	}

	schedule, err := a.topology.Schedule(trainNo, origin, dest)
	if err != nil {
		return nil, err
	}

	fromStation, err := a.topology.Station(origin)
	if err != nil {
		return nil, err
	}
	toStation, err := a.topology.Station(dest)
	if err != nil {
		return nil, err
	}

	seats := make([]model.SeatAvailability, 0, len(train.Seats))
	for class, cfg := range train.Seats {
		remaining, err := a.store.QueryRemaining(ctx, trainNo, date, legs, class)
		if err != nil {
			// 庫存查詢失敗必須往上傳，不得折算成「售罄」
			return nil, err
		}
		seats = append(seats, model.SeatAvailability{
			SeatClass: class,
			Name:      class.DisplayName(),
			Status:    a.displayStatus(remaining),
			Price:     cfg.Price,
			Remaining: remaining,
		})
	}
	// map 迭代無序，輸出按等級排定
	sort.Slice(seats, func(i, j int) bool { return seats[i].SeatClass < seats[j].SeatClass })

	return &model.TicketInfo{
		TrainNumber:     trainNo,
		TrainType:       train.Type,
		FromStation:     fromStation.Name,
		ToStation:       toStation.Name,
		DepartureTime:   schedule.Departure,
		ArrivalTime:     schedule.Arrival,
		DurationMinutes: schedule.DurationMinutes,
		ArrivalDay:      schedule.ArrivalDay,
		Seats:           seats,
		DepartureMinute: schedule.DepartureMinute,
	}, nil
}

// displayStatus 0 -> 無票(可候補)；低於門檻 -> 確切張數；其餘 -> 有票
func (a *AvailabilityComputerImpl) displayStatus(remaining int) string {
	switch {
	case remaining <= 0:
		return model.SeatStatusSoldOut
	case remaining < a.lowStockThreshold:
		return strconv.Itoa(remaining)
	default:
		return model.SeatStatusAvailable
	}
}

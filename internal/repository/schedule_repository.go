package repository

import (
	"context"

	"train-ticket-engine/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ScheduleRepository 拓撲與票價載入器：啟動或排程刷新時讀出不可變快照
type ScheduleRepository interface {
	LoadStations(ctx context.Context) ([]*model.Station, error)
	LoadTrains(ctx context.Context) ([]*model.Train, error)
}

type ScheduleRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewScheduleRepository(pool *pgxpool.Pool) ScheduleRepository {
	return &ScheduleRepositoryImpl{
		pool: pool,
	}
}

func (r *ScheduleRepositoryImpl) LoadStations(ctx context.Context) ([]*model.Station, error) {
	query := `
		SELECT code, name, city
		FROM stations
		ORDER BY code
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stations := make([]*model.Station, 0)

	for rows.Next() {
		var station model.Station
		err := rows.Scan(
			&station.Code,
			&station.Name,
			&station.City,
		)
		if err != nil {
			return nil, err
		}
		stations = append(stations, &station)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stations, nil
}

func (r *ScheduleRepositoryImpl) LoadTrains(ctx context.Context) ([]*model.Train, error) {
	trains, byNumber, err := r.loadTrainHeads(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.loadStops(ctx, byNumber); err != nil {
		return nil, err
	}

	if err := r.loadSeats(ctx, byNumber); err != nil {
		return nil, err
	}

	return trains, nil
}

func (r *ScheduleRepositoryImpl) loadTrainHeads(ctx context.Context) ([]*model.Train, map[string]*model.Train, error) {
	query := `
		SELECT number, type
		FROM trains
		ORDER BY number
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	trains := make([]*model.Train, 0)
	byNumber := make(map[string]*model.Train)

	for rows.Next() {
		var train model.Train
		err := rows.Scan(
			&train.Number,
			&train.Type,
		)
		if err != nil {
			return nil, nil, err
		}
		train.Seats = make(map[model.SeatClass]model.SeatConfig)
		trains = append(trains, &train)
		byNumber[train.Number] = &train
	}

	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return trains, byNumber, nil
}

func (r *ScheduleRepositoryImpl) loadStops(ctx context.Context, byNumber map[string]*model.Train) error {
	// stop_seq 決定停靠順序，也決定區段索引
	query := `
		SELECT train_number, station_code, arrival, departure, day_offset
		FROM train_stops
		ORDER BY train_number, stop_seq
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var trainNumber string
		var stop model.Stop
		err := rows.Scan(
			&trainNumber,
			&stop.StationCode,
			&stop.Arrival,
			&stop.Departure,
			&stop.DayOffset,
		)
		if err != nil {
			return err
		}
		if train, ok := byNumber[trainNumber]; ok {
			train.Stops = append(train.Stops, stop)
		}
	}

	return rows.Err()
}

func (r *ScheduleRepositoryImpl) loadSeats(ctx context.Context, byNumber map[string]*model.Train) error {
	query := `
		SELECT train_number, seat_class, price, capacity
		FROM train_seats
		ORDER BY train_number, seat_class
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var trainNumber string
		var seatClass model.SeatClass
		var cfg model.SeatConfig
		err := rows.Scan(
			&trainNumber,
			&seatClass,
			&cfg.Price,
			&cfg.Capacity,
		)
		if err != nil {
			return err
		}
		if train, ok := byNumber[trainNumber]; ok {
			train.Seats[seatClass] = cfg
		}
	}

	return rows.Err()
}

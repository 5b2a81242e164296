package main

import (
	"context"
	"log"

	"train-ticket-engine/config"
	"train-ticket-engine/internal/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// 建立時刻表 schema 並寫入示範排程，供 server 啟動載入
func main() {
	_ = godotenv.Load()

	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()

	if err := createSchema(ctx, pool); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	if err := seedStations(ctx, tx); err != nil {
		log.Fatalf("Failed to seed stations: %v", err)
	}
	if err := seedTrains(ctx, tx); err != nil {
		log.Fatalf("Failed to seed trains: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed completed")
}

func createSchema(ctx context.Context, pool *pgxpool.Pool) error {
	schema := `
		CREATE TABLE IF NOT EXISTS stations (
			code TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			city TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS trains (
			number TEXT PRIMARY KEY,
			type TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS train_stops (
			train_number TEXT NOT NULL REFERENCES trains(number),
			stop_seq INT NOT NULL,
			station_code TEXT NOT NULL REFERENCES stations(code),
			arrival TEXT NOT NULL,
			departure TEXT NOT NULL,
			day_offset INT NOT NULL DEFAULT 0,
			PRIMARY KEY (train_number, stop_seq)
		);

		CREATE TABLE IF NOT EXISTS train_seats (
			train_number TEXT NOT NULL REFERENCES trains(number),
			seat_class TEXT NOT NULL,
			price NUMERIC(10,2) NOT NULL,
			capacity INT NOT NULL,
			PRIMARY KEY (train_number, seat_class)
		);
	`
	_, err := pool.Exec(ctx, schema)
	return err
}

func seedStations(ctx context.Context, tx pgx.Tx) error {
	query := `
		INSERT INTO stations (code, name, city)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO NOTHING
	`

	stations := [][]string{
		{"BJP", "北京南", "北京"},
		{"JNK", "濟南西", "濟南"},
		{"NKH", "南京南", "南京"},
		{"AOH", "上海虹橋", "上海"},
		{"HZH", "杭州東", "杭州"},
		{"BJX", "北京西", "北京"},
		{"ZZF", "鄭州", "鄭州"},
		{"WCN", "武昌", "武漢"},
		{"GZQ", "廣州", "廣州"},
	}

	for _, s := range stations {
		if _, err := tx.Exec(ctx, query, s[0], s[1], s[2]); err != nil {
			return err
		}
	}
	return nil
}

type stopRow struct {
	seq       int
	station   string
	arrival   string
	departure string
	dayOffset int
}

type seatRow struct {
	class    string
	price    float64
	capacity int
}

func seedTrains(ctx context.Context, tx pgx.Tx) error {
	trains := []struct {
		number string
		typ    string
		stops  []stopRow
		seats  []seatRow
	}{
		{
			number: "G1",
			typ:    "high_speed",
			stops: []stopRow{
				{0, "BJP", "09:00", "09:00", 0},
				{1, "NKH", "12:24", "12:26", 0},
				{2, "AOH", "13:28", "13:28", 0},
			},
			seats: []seatRow{
				{"business_class", 1748.0, 24},
				{"first_class", 933.0, 80},
				{"second_class", 553.0, 100},
			},
		},
		{
			number: "G33",
			typ:    "high_speed",
			stops: []stopRow{
				{0, "BJP", "07:15", "07:15", 0},
				{1, "JNK", "08:40", "08:42", 0},
				{2, "NKH", "10:50", "10:52", 0},
				{3, "AOH", "11:55", "11:55", 0},
			},
			seats: []seatRow{
				{"first_class", 933.0, 64},
				{"second_class", 553.0, 120},
			},
		},
		{
			number: "D311",
			typ:    "high_speed",
			stops: []stopRow{
				{0, "BJP", "21:21", "21:21", 0},
				{1, "NKH", "05:42", "05:46", 1},
				{2, "AOH", "06:55", "06:55", 1},
			},
			seats: []seatRow{
				{"second_class", 309.5, 150},
				{"sleeper", 700.0, 60},
			},
		},
		{
			number: "T31",
			typ:    "normal",
			stops: []stopRow{
				{0, "BJX", "08:00", "08:00", 0},
				{1, "ZZF", "14:30", "14:38", 0},
				{2, "WCN", "19:45", "19:53", 0},
				{3, "GZQ", "07:30", "07:30", 1},
			},
			seats: []seatRow{
				{"second_class", 253.0, 180},
				{"sleeper", 458.5, 90},
			},
		},
	}

	trainQuery := `
		INSERT INTO trains (number, type)
		VALUES ($1, $2)
		ON CONFLICT (number) DO NOTHING
	`
	stopQuery := `
		INSERT INTO train_stops (train_number, stop_seq, station_code, arrival, departure, day_offset)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (train_number, stop_seq) DO NOTHING
	`
	seatQuery := `
		INSERT INTO train_seats (train_number, seat_class, price, capacity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (train_number, seat_class) DO NOTHING
	`

	for _, t := range trains {
		if _, err := tx.Exec(ctx, trainQuery, t.number, t.typ); err != nil {
			return err
		}
		for _, s := range t.stops {
			if _, err := tx.Exec(ctx, stopQuery, t.number, s.seq, s.station, s.arrival, s.departure, s.dayOffset); err != nil {
				return err
			}
		}
		for _, s := range t.seats {
			if _, err := tx.Exec(ctx, seatQuery, t.number, s.class, s.price, s.capacity); err != nil {
				return err
			}
		}
	}
	return nil
}

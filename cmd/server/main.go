package main

import (
	"context"
	"log"
	"time"

	"train-ticket-engine/config"
	"train-ticket-engine/internal/availability"
	"train-ticket-engine/internal/cache"
	"train-ticket-engine/internal/database"
	"train-ticket-engine/internal/handler"
	"train-ticket-engine/internal/inventory"
	"train-ticket-engine/internal/model"
	"train-ticket-engine/internal/queue"
	"train-ticket-engine/internal/repository"
	"train-ticket-engine/internal/service"
	"train-ticket-engine/internal/topology"
	"train-ticket-engine/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// 開賣窗口：今日起預熱幾天的車次庫存
const saleWindowDays = 30

func main() {
	// .env 不存在時沿用環境變數
	_ = godotenv.Load()

	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	ctx := context.Background()

	scheduleRepo := repository.NewScheduleRepository(pool)
	stations, err := scheduleRepo.LoadStations(ctx)
	if err != nil {
		log.Fatalf("Failed to load stations: %v", err)
	}
	trains, err := scheduleRepo.LoadTrains(ctx)
	if err != nil {
		log.Fatalf("Failed to load trains: %v", err)
	}

	topo, err := topology.Build(stations, trains)
	if err != nil {
		log.Fatalf("Failed to build route topology: %v", err)
	}

	invalidations, err := queue.NewRedisStreamInvalidationQueue(rdb, "", nil)
	if err != nil {
		log.Fatalf("Failed to initialize invalidation queue: %v", err)
	}

	store := inventory.NewMemorySeatInventoryStore(invalidations)
	if err := seedInventory(store, trains); err != nil {
		log.Fatalf("Failed to seed inventory: %v", err)
	}

	resultCache := cache.NewRedisResultCache(rdb, cfg.Search.CacheTTL)

	invalidator := worker.NewCacheInvalidator(resultCache, invalidations)
	if err := invalidator.Start(ctx); err != nil {
		log.Fatalf("Failed to start cache invalidator: %v", err)
	}

	computer := availability.NewAvailabilityComputer(topo, store, cfg.Search.LowStockThreshold)
	searchService := service.NewSearchService(topo, computer, store, resultCache, cfg.Search)
	reservationService := service.NewReservationService(topo, store)

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	handler.NewSearchHandler(searchService).RegisterRoutes(router)
	handler.NewReservationHandler(reservationService).RegisterRoutes(router)

	router.Run() // 預設監聽 0.0.0.0:8080
}

// seedInventory 對開賣窗口內的每個乘車日建立各車次庫存
func seedInventory(store inventory.SeatInventoryStore, trains []*model.Train) error {
	today := time.Now()
	for day := 0; day < saleWindowDays; day++ {
		date := today.AddDate(0, 0, day).Format("2006-01-02")
		for _, train := range trains {
			capacities := make(map[model.SeatClass]int, len(train.Seats))
			for class, cfg := range train.Seats {
				capacities[class] = cfg.Capacity
			}
			if err := store.Seed(train.Number, date, train.LegCount(), capacities); err != nil {
				return err
			}
		}
	}
	return nil
}

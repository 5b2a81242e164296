package worker

import (
	"context"

	"train-ticket-engine/internal/cache"
	"train-ticket-engine/internal/queue"
	"train-ticket-engine/pkg/logger"

	"go.uber.org/zap"
)

// CacheInvalidator 訂閱庫存異動事件，逐筆移除受影響的查詢快取
type CacheInvalidator interface {
	Start(ctx context.Context) error
}

type CacheInvalidatorImpl struct {
	cache cache.ResultCache
	queue queue.InvalidationQueue
}

func NewCacheInvalidator(cache cache.ResultCache, queue queue.InvalidationQueue) CacheInvalidator {
	return &CacheInvalidatorImpl{
		cache: cache,
		queue: queue,
	}
}

func (w *CacheInvalidatorImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		log := logger.WithComponent("worker")
		for msg := range msgs {
			err := w.cache.Invalidate(ctx, msg.Event.TrainNumber, msg.Event.Date)

			if err != nil {
				// 失效失敗不能吞掉：留在隊列重試，否則快取會供出過期座位數
				log.Error("invalidate failed", zap.String("train", msg.Event.TrainNumber), zap.String("date", msg.Event.Date), zap.Error(err))
				msg.Nack(true)
			} else {
				msg.Ack()
			}
		}
	}()
	return nil
}

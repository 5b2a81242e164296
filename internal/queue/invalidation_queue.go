package queue

import (
	"context"
	"fmt"

	"train-ticket-engine/internal/model"
)

type Delivery struct {
	Event model.InvalidationEvent
	Ack   func()
	Nack  func(requeue bool)
}

// InvalidationQueue 庫存異動事件隊列：store 寫入後發佈，快取失效 worker 訂閱
type InvalidationQueue interface {
	// 發佈失效事件
	Publish(ctx context.Context, event model.InvalidationEvent) error
	// 訂閱失效事件
	Subscribe(ctx context.Context) (<-chan Delivery, error)
}

type MemoryInvalidationQueueImpl struct {
	// 單機版以 Go channel 實作
	ch chan model.InvalidationEvent
}

func NewMemoryInvalidationQueue(bufferSize int) InvalidationQueue {
	return &MemoryInvalidationQueueImpl{
		ch: make(chan model.InvalidationEvent, bufferSize),
	}
}

func (q *MemoryInvalidationQueueImpl) Publish(ctx context.Context, event model.InvalidationEvent) error {
	select {
	case q.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		// 滿了就丟：事件只是加速失效的提示，不值得讓保留路徑卡住；條目壽命由 TTL 兜底
		return fmt.Errorf("invalidation queue full, event dropped: %s %s", event.TrainNumber, event.Date)
	}
}

func (q *MemoryInvalidationQueueImpl) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-q.ch:
				if !ok {
					return
				}

				d := Delivery{
					Event: event,
					Ack:   func() { /* 記憶體版不用做特別動作 */ },
					Nack: func(requeue bool) {
						if requeue {
							select {
							case q.ch <- event: // 簡單模擬重回隊列
							default: // 滿了放棄重排，TTL 兜底
							}
						}
					},
				}
				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

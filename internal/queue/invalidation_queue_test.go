package queue_test

import (
	"context"
	"testing"
	"time"

	"train-ticket-engine/internal/model"
	"train-ticket-engine/internal/queue"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func testEvent() model.InvalidationEvent {
	return model.InvalidationEvent{TrainNumber: "G1", Date: "2026-10-01"}
}

func TestMemoryInvalidationQueue(t *testing.T) {
	t.Run("PublishThenSubscribe", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewMemoryInvalidationQueue(10)
		assert.NoError(t, q.Publish(ctx, testEvent()))

		msgs, err := q.Subscribe(ctx)
		assert.NoError(t, err)

		select {
		case msg := <-msgs:
			assert.Equal(t, testEvent(), msg.Event)
			msg.Ack()
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for delivery")
		}
	})

	t.Run("PublishDropsWhenFull", func(t *testing.T) {
		// 隊列滿時 Publish 不得阻塞呼叫端(保留路徑)，回錯即可
		ctx := context.Background()

		q := queue.NewMemoryInvalidationQueue(1)
		assert.NoError(t, q.Publish(ctx, testEvent()))

		done := make(chan error, 1)
		go func() { done <- q.Publish(ctx, testEvent()) }()

		select {
		case err := <-done:
			assert.Error(t, err)
		case <-time.After(time.Second):
			t.Fatal("publish blocked on a full queue")
		}
	})

	t.Run("SubscribeStopsOnCancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		q := queue.NewMemoryInvalidationQueue(1)
		assert.NoError(t, q.Publish(ctx, testEvent()))

		msgs, err := q.Subscribe(ctx)
		assert.NoError(t, err)

		// 無人消費時取消 context：投遞 goroutine 必須關閉通道退出，不得懸掛
		cancel()
		deadline := time.After(time.Second)
		for {
			select {
			case _, ok := <-msgs:
				if !ok {
					return
				}
			case <-deadline:
				t.Fatal("subscriber did not stop after cancel")
			}
		}
	})

	t.Run("NackRequeues", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewMemoryInvalidationQueue(10)
		assert.NoError(t, q.Publish(ctx, testEvent()))

		msgs, err := q.Subscribe(ctx)
		assert.NoError(t, err)

		msg := <-msgs
		msg.Nack(true)

		// 重回隊列後再收到一次
		select {
		case again := <-msgs:
			assert.Equal(t, testEvent(), again.Event)
			again.Ack()
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for requeued delivery")
		}
	})
}

func TestRedisStreamInvalidationQueue_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()

	q, err := queue.NewRedisStreamInvalidationQueue(client, "test-worker", nil)
	assert.NoError(t, err)

	assert.NoError(t, q.Publish(ctx, testEvent()))

	// 訊息落在 stream，event 欄位為 JSON
	msgs, err := client.XRange(ctx, queue.StreamKey, "-", "+").Result()
	assert.NoError(t, err)
	assert.Len(t, msgs, 1)
	assert.JSONEq(t, `{"train_number":"G1","date":"2026-10-01"}`, msgs[0].Values["event"].(string))
}

package worker_test

import (
	"context"
	"testing"
	"time"

	"train-ticket-engine/internal/cache"
	"train-ticket-engine/internal/model"
	"train-ticket-engine/internal/queue"
	"train-ticket-engine/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheInvalidator_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resultCache := cache.NewMemoryResultCache()
	q := queue.NewMemoryInvalidationQueue(10)

	sig := cache.SearchSignature("BJP", "AOH", "2026-10-01", "", model.SortByDeparture)
	tickets := []*model.TicketInfo{{TrainNumber: "G1"}}
	touched := []model.TrainDate{{TrainNumber: "G1", Date: "2026-10-01"}}
	require.NoError(t, resultCache.Put(ctx, sig, tickets, touched))

	w := worker.NewCacheInvalidator(resultCache, q)
	require.NoError(t, w.Start(ctx))

	require.NoError(t, q.Publish(ctx, model.InvalidationEvent{TrainNumber: "G1", Date: "2026-10-01"}))

	// 事件消化後快取應被清除
	assert.Eventually(t, func() bool {
		_, hit, err := resultCache.Get(ctx, sig)
		return err == nil && !hit
	}, time.Second, 10*time.Millisecond)
}

func TestCacheInvalidator_UnrelatedEntryUntouched(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resultCache := cache.NewMemoryResultCache()
	q := queue.NewMemoryInvalidationQueue(10)

	sigG1 := cache.SearchSignature("BJP", "AOH", "2026-10-01", "", model.SortByDeparture)
	sigT31 := cache.SearchSignature("BJP", "AOH", "2026-10-02", "", model.SortByDeparture)
	require.NoError(t, resultCache.Put(ctx, sigG1, []*model.TicketInfo{{TrainNumber: "G1"}}, []model.TrainDate{{TrainNumber: "G1", Date: "2026-10-01"}}))
	require.NoError(t, resultCache.Put(ctx, sigT31, []*model.TicketInfo{{TrainNumber: "T31"}}, []model.TrainDate{{TrainNumber: "T31", Date: "2026-10-02"}}))

	w := worker.NewCacheInvalidator(resultCache, q)
	require.NoError(t, w.Start(ctx))

	require.NoError(t, q.Publish(ctx, model.InvalidationEvent{TrainNumber: "G1", Date: "2026-10-01"}))

	assert.Eventually(t, func() bool {
		_, hit, err := resultCache.Get(ctx, sigG1)
		return err == nil && !hit
	}, time.Second, 10*time.Millisecond)

	_, hit, err := resultCache.Get(ctx, sigT31)
	assert.NoError(t, err)
	assert.True(t, hit)
}

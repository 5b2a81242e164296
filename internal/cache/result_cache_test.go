package cache_test

import (
	"context"
	"testing"

	"train-ticket-engine/internal/cache"
	"train-ticket-engine/internal/model"

	"github.com/stretchr/testify/assert"
)

func testTickets() []*model.TicketInfo {
	return []*model.TicketInfo{
		{
			TrainNumber:   "G1",
			TrainType:     model.TrainTypeHighSpeed,
			FromStation:   "北京南",
			ToStation:     "上海虹橋",
			DepartureTime: "09:00",
			ArrivalTime:   "13:28",
			Seats: []model.SeatAvailability{
				{SeatClass: model.SeatClassSecond, Name: "二等座", Status: model.SeatStatusAvailable, Price: 553.0},
			},
		},
	}
}

func TestSearchSignature(t *testing.T) {
	sig1 := cache.SearchSignature("BJP", "AOH", "2026-10-01", "", model.SortByDeparture)
	sig2 := cache.SearchSignature("BJP", "AOH", "2026-10-01", "", model.SortByDuration)
	sig3 := cache.SearchSignature("BJP", "AOH", "2026-10-01", "", model.SortByDeparture)

	assert.NotEqual(t, sig1, sig2)
	assert.Equal(t, sig1, sig3)
}

func TestMemoryResultCache(t *testing.T) {
	ctx := context.Background()
	td := model.TrainDate{TrainNumber: "G1", Date: "2026-10-01"}

	t.Run("Miss", func(t *testing.T) {
		c := cache.NewMemoryResultCache()
		tickets, ok, err := c.Get(ctx, "sig")
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, tickets)
	})

	t.Run("PutThenGet", func(t *testing.T) {
		c := cache.NewMemoryResultCache()
		err := c.Put(ctx, "sig", testTickets(), []model.TrainDate{td})
		assert.NoError(t, err)

		tickets, ok, err := c.Get(ctx, "sig")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Len(t, tickets, 1)
		assert.Equal(t, "G1", tickets[0].TrainNumber)
	})

	t.Run("InvalidateRemovesTouchedEntries", func(t *testing.T) {
		c := cache.NewMemoryResultCache()
		other := model.TrainDate{TrainNumber: "G33", Date: "2026-10-01"}
		assert.NoError(t, c.Put(ctx, "sig-a", testTickets(), []model.TrainDate{td}))
		assert.NoError(t, c.Put(ctx, "sig-b", testTickets(), []model.TrainDate{other}))

		assert.NoError(t, c.Invalidate(ctx, "G1", "2026-10-01"))

		// 觸及 G1 的條目消失，其他條目保留
		_, ok, _ := c.Get(ctx, "sig-a")
		assert.False(t, ok)
		_, ok, _ = c.Get(ctx, "sig-b")
		assert.True(t, ok)
	})

	t.Run("InvalidateMultiTouchedEntry", func(t *testing.T) {
		c := cache.NewMemoryResultCache()
		other := model.TrainDate{TrainNumber: "G33", Date: "2026-10-01"}
		assert.NoError(t, c.Put(ctx, "sig-ab", testTickets(), []model.TrainDate{td, other}))

		// 任一觸及的 (車次, 乘車日) 失效即移除條目
		assert.NoError(t, c.Invalidate(ctx, "G33", "2026-10-01"))
		_, ok, _ := c.Get(ctx, "sig-ab")
		assert.False(t, ok)
	})

	t.Run("InvalidateUnknownTrainDate", func(t *testing.T) {
		c := cache.NewMemoryResultCache()
		assert.NoError(t, c.Invalidate(ctx, "G999", "2026-10-01"))
	})
}

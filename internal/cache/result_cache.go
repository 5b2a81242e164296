package cache

import (
	"context"
	"fmt"
	"sync"

	"train-ticket-engine/internal/model"
)

// SearchSignature 查詢簽名的正規編碼。
// 不含分頁參數：快取的是過濾+排序後的完整列表，分頁由引擎每次切片(失效面較小)。
func SearchSignature(from, to, date string, trainType model.TrainType, sortBy model.SortKey) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", from, to, date, trainType, sortBy)
}

// ResultCache 查詢結果快取：只是加速器，不是座位數的權威來源。
// 每筆條目記錄其計算觸及的 (車次, 乘車日)，庫存異動時精確移除，絕不提供過期條目。
type ResultCache interface {
	// 查詢：未命中回傳 ok=false
	Get(ctx context.Context, signature string) ([]*model.TicketInfo, bool, error)
	// 寫入：tickets 為分頁前的完整列表，touched 為其觸及的車次乘車日
	Put(ctx context.Context, signature string, tickets []*model.TicketInfo, touched []model.TrainDate) error
	// 失效：移除所有觸及 (車次, 乘車日) 的條目
	Invalidate(ctx context.Context, trainNo, date string) error
}

type memoryEntry struct {
	tickets []*model.TicketInfo
	touched []model.TrainDate
}

type MemoryResultCacheImpl struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	// 反向索引：(車次, 乘車日) -> 觸及它的簽名集合
	byTrainDate map[model.TrainDate]map[string]struct{}
}

func NewMemoryResultCache() *MemoryResultCacheImpl {
	return &MemoryResultCacheImpl{
		entries:     make(map[string]*memoryEntry),
		byTrainDate: make(map[model.TrainDate]map[string]struct{}),
	}
}

func (c *MemoryResultCacheImpl) Get(ctx context.Context, signature string) ([]*model.TicketInfo, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[signature]
	if !ok {
		return nil, false, nil
	}
	return entry.tickets, true, nil
}

func (c *MemoryResultCacheImpl) Put(ctx context.Context, signature string, tickets []*model.TicketInfo, touched []model.TrainDate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[signature] = &memoryEntry{tickets: tickets, touched: touched}
	for _, td := range touched {
		sigs, ok := c.byTrainDate[td]
		if !ok {
			sigs = make(map[string]struct{})
			c.byTrainDate[td] = sigs
		}
		sigs[signature] = struct{}{}
	}
	return nil
}

func (c *MemoryResultCacheImpl) Invalidate(ctx context.Context, trainNo, date string) error {
	td := model.TrainDate{TrainNumber: trainNo, Date: date}

	c.mu.Lock()
	defer c.mu.Unlock()

	for signature := range c.byTrainDate[td] {
		entry, ok := c.entries[signature]
		if !ok {
			continue
		}
		delete(c.entries, signature)
		// 同步清掉該條目在其他反向索引中的殘留
		for _, other := range entry.touched {
			if other != td {
				delete(c.byTrainDate[other], signature)
			}
		}
	}
	delete(c.byTrainDate, td)
	return nil
}

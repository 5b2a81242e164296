package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"train-ticket-engine/internal/model"
	apperrors "train-ticket-engine/pkg/app_errors"

	"github.com/redis/go-redis/v9"
)

// RedisResultCacheImpl 多實例部署用的 ResultCache。
// 條目存 JSON，反向索引用 SET；任何 Redis 失敗都折算成 ErrCacheUnavailable，
// 由引擎退回直接計算，只降效能不降正確性。
type RedisResultCacheImpl struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisResultCache(client *redis.Client, ttl time.Duration) *RedisResultCacheImpl {
	return &RedisResultCacheImpl{client: client, ttl: ttl}
}

func (c *RedisResultCacheImpl) entryKey(signature string) string {
	return fmt.Sprintf("search:%s", signature)
}

func (c *RedisResultCacheImpl) indexKey(trainNo, date string) string {
	return fmt.Sprintf("search:touched:%s:%s", trainNo, date)
}

func (c *RedisResultCacheImpl) Get(ctx context.Context, signature string) ([]*model.TicketInfo, bool, error) {
	val, err := c.client.Get(ctx, c.entryKey(signature)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", apperrors.ErrCacheUnavailable, err)
	}

	var tickets []*model.TicketInfo
	if err := json.Unmarshal([]byte(val), &tickets); err != nil {
		return nil, false, fmt.Errorf("%w: %v", apperrors.ErrCacheUnavailable, err)
	}
	return tickets, true, nil
}

func (c *RedisResultCacheImpl) Put(ctx context.Context, signature string, tickets []*model.TicketInfo, touched []model.TrainDate) error {
	payload, err := json.Marshal(tickets)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrCacheUnavailable, err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.entryKey(signature), payload, c.ttl)
	for _, td := range touched {
		key := c.indexKey(td.TrainNumber, td.Date)
		pipe.SAdd(ctx, key, signature)
		// 索引壽命略長於條目，避免條目還在而索引先消失
		pipe.Expire(ctx, key, c.ttl+time.Minute)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrCacheUnavailable, err)
	}
	return nil
}

func (c *RedisResultCacheImpl) Invalidate(ctx context.Context, trainNo, date string) error {
	indexKey := c.indexKey(trainNo, date)
	signatures, err := c.client.SMembers(ctx, indexKey).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("%w: %v", apperrors.ErrCacheUnavailable, err)
	}

	keys := make([]string, 0, len(signatures)+1)
	for _, sig := range signatures {
		keys = append(keys, c.entryKey(sig))
	}
	keys = append(keys, indexKey)

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrCacheUnavailable, err)
	}
	return nil
}

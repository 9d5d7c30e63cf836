package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-gin-raffle/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("raffle snapshot not cached")

const DefaultSnapshotTTL = 10 * time.Minute

type RaffleSnapshotCache interface {
	// 讀取：取得抽獎快照，沒有時回傳 ErrCacheMiss
	Get(ctx context.Context, raffleID uuid.UUID) (*model.Raffle, error)
	// 寫入：只在版本不舊於現有快照時覆寫 (使用Lua腳本確保原子性)
	Put(ctx context.Context, raffle *model.Raffle) (bool, error)
	// 失效：刪除快照
	Invalidate(ctx context.Context, raffleID uuid.UUID) error
}

type RedisRaffleSnapshotCacheImpl struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRaffleSnapshotCache(client *redis.Client, ttl time.Duration) RaffleSnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &RedisRaffleSnapshotCacheImpl{
		client: client,
		ttl:    ttl,
	}
}

// 快照 key
func (c *RedisRaffleSnapshotCacheImpl) getSnapshotKey(raffleID uuid.UUID) string {
	return fmt.Sprintf("raffle:%s:snapshot", raffleID)
}

func (c *RedisRaffleSnapshotCacheImpl) Get(ctx context.Context, raffleID uuid.UUID) (*model.Raffle, error) {
	data, err := c.client.HGet(ctx, c.getSnapshotKey(raffleID), "data").Result()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var raffle model.Raffle
	if err := json.Unmarshal([]byte(data), &raffle); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %v", err)
	}
	return &raffle, nil
}

/*
*

	寫入快照 (使用Lua腳本確保原子性)
	1. 讀取現有版本
	2. 現有版本較新則放棄
	3. 寫入版本與資料並設定過期
*/
func (c *RedisRaffleSnapshotCacheImpl) Put(ctx context.Context, raffle *model.Raffle) (bool, error) {
	data, err := json.Marshal(raffle)
	if err != nil {
		return false, fmt.Errorf("marshal snapshot: %w", err)
	}

	script := `
		local key = KEYS[1]
		local version = tonumber(ARGV[1])

		local current = redis.call('HGET', key, 'version')
		if current and tonumber(current) > version then
			return 0 -- 已有較新的快照
		end

		redis.call('HSET', key, 'version', ARGV[1], 'data', ARGV[2])
		redis.call('PEXPIRE', key, ARGV[3])
		return 1
	`

	result, err := c.client.Eval(ctx, script,
		[]string{c.getSnapshotKey(raffle.RaffleID)},
		raffle.Version, string(data), c.ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}

func (c *RedisRaffleSnapshotCacheImpl) Invalidate(ctx context.Context, raffleID uuid.UUID) error {
	return c.client.Del(ctx, c.getSnapshotKey(raffleID)).Err()
}

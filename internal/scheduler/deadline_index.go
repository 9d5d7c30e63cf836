package scheduler

import (
	"context"
	"fmt"
	"strconv"

	"go-gin-raffle/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DeadlineKey = "raffles:deadlines"

// DeadlineIndex 依 redemption_time 排序的待開獎抽獎
type DeadlineIndex interface {
	Schedule(ctx context.Context, raffleID uuid.UUID, redemptionTime int64) error
	// Due 回傳 redemption_time <= nowMs 的抽獎，最多 limit 筆
	Due(ctx context.Context, nowMs int64, limit int64) ([]*model.ResolveJob, error)
	Remove(ctx context.Context, raffleID uuid.UUID) error
}

type RedisDeadlineIndex struct {
	client *redis.Client
	key    string
}

func NewRedisDeadlineIndex(client *redis.Client) DeadlineIndex {
	return &RedisDeadlineIndex{
		client: client,
		key:    DeadlineKey,
	}
}

func (i *RedisDeadlineIndex) Schedule(ctx context.Context, raffleID uuid.UUID, redemptionTime int64) error {
	return i.client.ZAdd(ctx, i.key, redis.Z{
		Score:  float64(redemptionTime),
		Member: raffleID.String(),
	}).Err()
}

func (i *RedisDeadlineIndex) Due(ctx context.Context, nowMs int64, limit int64) ([]*model.ResolveJob, error) {
	members, err := i.client.ZRangeByScoreWithScores(ctx, i.key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(nowMs, 10),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, err
	}

	jobs := make([]*model.ResolveJob, 0, len(members))
	for _, z := range members {
		s, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid raffle id %q in deadline index: %w", s, err)
		}
		jobs = append(jobs, &model.ResolveJob{
			RaffleID:       id,
			RedemptionTime: int64(z.Score),
		})
	}
	return jobs, nil
}

func (i *RedisDeadlineIndex) Remove(ctx context.Context, raffleID uuid.UUID) error {
	return i.client.ZRem(ctx, i.key, raffleID.String()).Err()
}

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go-gin-raffle/internal/model"
	"go-gin-raffle/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	StreamKey          = "raffles:resolve:stream"
	ConsumerGroupName  = "resolve-workers"
	ConsumerNamePrefix = "worker"
	jobField           = "job"
)

// RedisStreamConfig 可注入的逾時與重試設定；零值欄位使用預設。
type RedisStreamConfig struct {
	ClaimMinIdleTime   time.Duration // PEL 中超過此時間才被 XAUTOCLAIM 領取
	MaxRetryCount      int           // 超過此次數視為毒藥消息並丟棄
	ReadGroupBlockTime time.Duration // XReadGroup 阻塞時間
}

func defaultRedisStreamConfig() RedisStreamConfig {
	return RedisStreamConfig{
		ClaimMinIdleTime:   5 * time.Second,
		MaxRetryCount:      5,
		ReadGroupBlockTime: 2 * time.Second,
	}
}

func (c RedisStreamConfig) withDefaults() RedisStreamConfig {
	d := defaultRedisStreamConfig()
	if c.ClaimMinIdleTime > 0 {
		d.ClaimMinIdleTime = c.ClaimMinIdleTime
	}
	if c.MaxRetryCount > 0 {
		d.MaxRetryCount = c.MaxRetryCount
	}
	if c.ReadGroupBlockTime > 0 {
		d.ReadGroupBlockTime = c.ReadGroupBlockTime
	}
	return d
}

type RedisStreamResolveQueue struct {
	client       *redis.Client
	streamKey    string
	groupName    string
	consumerName string
	cfg          RedisStreamConfig
	log          *zap.Logger
}

// NewRedisStreamResolveQueue 建立 Redis Stream 版 ResolveQueue；consumerID 為空時自動產生。
func NewRedisStreamResolveQueue(ctx context.Context, client *redis.Client, consumerID string, cfg RedisStreamConfig) (ResolveQueue, error) {
	if consumerID == "" {
		consumerID = uuid.New().String()
	}
	q := &RedisStreamResolveQueue{
		client:       client,
		streamKey:    StreamKey,
		groupName:    ConsumerGroupName,
		consumerName: fmt.Sprintf("%s:%s", ConsumerNamePrefix, consumerID),
		cfg:          cfg.withDefaults(),
		log:          logger.WithComponent("mq"),
	}
	if err := q.ensureConsumerGroup(ctx); err != nil {
		return nil, fmt.Errorf("ensure consumer group: %w", err)
	}
	return q, nil
}

func (q *RedisStreamResolveQueue) ensureConsumerGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.streamKey, q.groupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (q *RedisStreamResolveQueue) PublishResolve(ctx context.Context, job *model.ResolveJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal resolve job: %w", err)
	}
	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.streamKey,
		ID:     "*",
		Values: map[string]interface{}{jobField: string(payload)},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd: %w", err)
	}
	return nil
}

func (q *RedisStreamResolveQueue) SubscribeResolves(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	// 兩個送出端都結束後才能 close(out)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		q.runAutoClaim(ctx, out)
	}()
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			q.readAndDeliver(ctx, out)
		}
	}()
	go func() {
		wg.Wait()
		close(out)
	}()
	return out, nil
}

// readAndDeliver 只讀 ">"（新訊息）；已投遞過的 Pending 訊息由 XAUTOCLAIM 逾時後領回重試。
func (q *RedisStreamResolveQueue) readAndDeliver(ctx context.Context, out chan<- Delivery) {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.groupName,
		Consumer: q.consumerName,
		Streams:  []string{q.streamKey, ">"},
		Count:    10,
		Block:    q.cfg.ReadGroupBlockTime,
	}).Result()

	if errors.Is(err, redis.Nil) {
		return
	}
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		q.log.Error("XReadGroup failed", zap.Error(err))
		time.Sleep(time.Second)
		return
	}

	for _, stream := range streams {
		if stream.Stream != q.streamKey {
			continue
		}
		for _, msg := range stream.Messages {
			if !q.deliver(ctx, out, msg) {
				return
			}
		}
	}
}

// runAutoClaim 定時用 XAUTOCLAIM 領取超時未處理的消息
func (q *RedisStreamResolveQueue) runAutoClaim(ctx context.Context, out chan<- Delivery) {
	ticker := time.NewTicker(q.cfg.ClaimMinIdleTime)
	defer ticker.Stop()
	startID := "0-0"

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		claimed, nextID, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   q.streamKey,
			Group:    q.groupName,
			Consumer: q.consumerName,
			MinIdle:  q.cfg.ClaimMinIdleTime,
			Count:    10,
			Start:    startID,
		}).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			q.log.Error("XAutoClaim failed", zap.Error(err))
			continue
		}
		startID = "0-0"
		if nextID != "" {
			startID = nextID
		}

		for _, msg := range claimed {
			if q.isPoison(ctx, msg.ID) {
				continue
			}
			if !q.deliver(ctx, out, msg) {
				return
			}
		}
	}
}

// isPoison 重試次數超過上限的消息直接 ack 丟棄
func (q *RedisStreamResolveQueue) isPoison(ctx context.Context, messageID string) bool {
	pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: q.streamKey,
		Group:  q.groupName,
		Start:  messageID,
		End:    messageID,
		Count:  1,
	}).Result()
	if err != nil || len(pending) == 0 {
		if err != nil && !errors.Is(err, redis.Nil) {
			q.log.Warn("XPendingExt failed", zap.String("message_id", messageID), zap.Error(err))
		}
		return false
	}

	retries := int(pending[0].RetryCount)
	if retries < q.cfg.MaxRetryCount {
		return false
	}
	q.log.Warn("discard poison message",
		zap.String("message_id", messageID),
		zap.Int("retries", retries),
		zap.Int("max_retries", q.cfg.MaxRetryCount),
	)
	_ = q.client.XAck(ctx, q.streamKey, q.groupName, messageID).Err()
	return true
}

// deliver 回傳 false 代表 ctx 已結束
func (q *RedisStreamResolveQueue) deliver(ctx context.Context, out chan<- Delivery, msg redis.XMessage) bool {
	d, err := q.newDelivery(ctx, msg)
	if err != nil {
		q.log.Warn("drop malformed message", zap.String("message_id", msg.ID), zap.Error(err))
		_ = q.client.XAck(ctx, q.streamKey, q.groupName, msg.ID).Err()
		return true
	}
	select {
	case out <- d:
		return true
	case <-ctx.Done():
		return false
	}
}

func (q *RedisStreamResolveQueue) newDelivery(ctx context.Context, msg redis.XMessage) (Delivery, error) {
	payload, ok := msg.Values[jobField].(string)
	if !ok {
		return Delivery{}, fmt.Errorf("missing %s field", jobField)
	}
	var job model.ResolveJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		return Delivery{}, fmt.Errorf("unmarshal resolve job: %w", err)
	}

	msgID := msg.ID
	ack := func() {
		if err := q.client.XAck(ctx, q.streamKey, q.groupName, msgID).Err(); err != nil {
			q.log.Error("XAck failed", zap.String("message_id", msgID), zap.Error(err))
		}
	}
	return Delivery{
		Job: &job,
		Ack: ack,
		Nack: func(requeue bool) {
			if !requeue {
				ack()
				return
			}
			// 消息留在 PEL，等 ClaimMinIdleTime 後由 XAUTOCLAIM 領取，形成延遲重試
			q.log.Info("message nack(requeue), will retry",
				zap.String("message_id", msgID),
				zap.Duration("claim_min_idle", q.cfg.ClaimMinIdleTime),
			)
		},
	}, nil
}

package scheduler

import (
	"context"
	"time"

	"go-gin-raffle/internal/clock"
	"go-gin-raffle/internal/queue"
	"go-gin-raffle/pkg/logger"

	"go.uber.org/zap"
)

const defaultBatchSize = 100

// Poller 定時把到期的抽獎送進開獎隊列
type Poller struct {
	index    DeadlineIndex
	queue    queue.ResolveQueue
	clock    clock.Clock
	interval time.Duration
	batch    int64
	log      *zap.Logger
}

func NewPoller(index DeadlineIndex, q queue.ResolveQueue, c clock.Clock, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	return &Poller{
		index:    index,
		queue:    q,
		clock:    c,
		interval: interval,
		batch:    defaultBatchSize,
		log:      logger.WithComponent("scheduler"),
	}
}

func (p *Poller) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := p.RunOnce(ctx); err != nil && ctx.Err() == nil {
					p.log.Error("poll deadlines failed", zap.Error(err))
				}
			}
		}
	}()
}

// RunOnce 送出一批到期工作，回傳成功送出的筆數。
// 只有送進隊列後才從索引移除，失敗的下一輪再試。
func (p *Poller) RunOnce(ctx context.Context) (int, error) {
	now := p.clock.NowMs()
	jobs, err := p.index.Due(ctx, now, p.batch)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, job := range jobs {
		job.EnqueuedAt = time.UnixMilli(now).UTC()
		if err := p.queue.PublishResolve(ctx, job); err != nil {
			return sent, err
		}
		if err := p.index.Remove(ctx, job.RaffleID); err != nil {
			p.log.Warn("remove scheduled raffle failed", zap.String("raffle_id", job.RaffleID.String()), zap.Error(err))
		}
		sent++
	}
	if sent > 0 {
		p.log.Info("enqueued due raffles", zap.Int("count", sent))
	}
	return sent, nil
}

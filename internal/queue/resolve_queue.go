package queue

import (
	"context"
	"time"

	"go-gin-raffle/internal/model"
)

type Delivery struct {
	Job  *model.ResolveJob
	Ack  func()
	Nack func(requeue bool)
}

type ResolveQueue interface {
	// 發送到期抽獎到隊列
	PublishResolve(ctx context.Context, job *model.ResolveJob) error
	// 訂閱開獎隊列
	SubscribeResolves(ctx context.Context) (<-chan Delivery, error)
}

// DefaultRetryDelay Nack(true) 後重新入列前的等待時間
const DefaultRetryDelay = time.Second

type MemoryResolveQueue struct {
	// 使用 Go channel 來模擬 MQ 隊列
	ch         chan *model.ResolveJob
	retryDelay time.Duration
}

func NewMemoryResolveQueue(bufferSize int) ResolveQueue {
	return NewMemoryResolveQueueWithRetry(bufferSize, DefaultRetryDelay)
}

// NewMemoryResolveQueueWithRetry 可指定 Nack(true) 的重試延遲
func NewMemoryResolveQueueWithRetry(bufferSize int, retryDelay time.Duration) ResolveQueue {
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	return &MemoryResolveQueue{
		ch:         make(chan *model.ResolveJob, bufferSize),
		retryDelay: retryDelay,
	}
}

func (q *MemoryResolveQueue) PublishResolve(ctx context.Context, job *model.ResolveJob) error {
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryResolveQueue) SubscribeResolves(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case job, ok := <-q.ch:
				if !ok {
					return
				}

				d := Delivery{
					Job: job,
					Ack: func() {},
					Nack: func(requeue bool) {
						if !requeue {
							return
						}
						// 延遲後重回隊列；隊列滿時等到有空位，訂閱結束才放棄
						time.AfterFunc(q.retryDelay, func() {
							select {
							case q.ch <- job:
							case <-ctx.Done():
							}
						})
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

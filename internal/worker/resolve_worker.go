package worker

import (
	"context"
	"errors"

	"go-gin-raffle/internal/queue"
	"go-gin-raffle/internal/service"
	apperrors "go-gin-raffle/pkg/app_errors"
	"go-gin-raffle/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ResolveWorker interface {
	// 訂閱開獎隊列
	Start(ctx context.Context) error
}

type ResolveWorkerImpl struct {
	service service.RaffleService
	queue   queue.ResolveQueue
	log     *zap.Logger
}

func NewResolveWorker(service service.RaffleService, queue queue.ResolveQueue) ResolveWorker {
	return &ResolveWorkerImpl{
		service: service,
		queue:   queue,
		log:     logger.WithComponent("worker"),
	}
}

func (w *ResolveWorkerImpl) Start(ctx context.Context) error {
	deliveries, err := w.queue.SubscribeResolves(ctx)
	if err != nil {
		return err
	}

	go func() {
		for d := range deliveries {
			w.handle(ctx, d)
		}
	}()
	return nil
}

func (w *ResolveWorkerImpl) handle(ctx context.Context, d queue.Delivery) {
	raffleID := d.Job.RaffleID
	winner, err := w.service.Resolve(ctx, raffleID, uuid.Nil)

	switch {
	case err == nil:
		w.log.Info("auto resolved", zap.String("raffle_id", raffleID.String()), zap.String("winning_ticket", winner.String()))
		d.Ack()
	case isTerminal(err):
		// 已開獎、沒人買、或抽獎不存在：重試也不會成功
		w.log.Info("skip auto resolve", zap.String("raffle_id", raffleID.String()), zap.Error(err))
		d.Ack()
	default:
		// 資料庫暫時連不上等情況，交給隊列重試
		w.log.Warn("auto resolve failed, will retry", zap.String("raffle_id", raffleID.String()), zap.Error(err))
		d.Nack(true)
	}
}

func isTerminal(err error) bool {
	return errors.Is(err, apperrors.ErrAlreadyResolved) ||
		errors.Is(err, apperrors.ErrNoTicketsSold) ||
		errors.Is(err, apperrors.ErrRaffleNotFound)
}

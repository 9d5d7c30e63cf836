package service

import (
	"context"
	"errors"

	"go-gin-raffle/internal/balance"
	"go-gin-raffle/internal/cache"
	"go-gin-raffle/internal/clock"
	"go-gin-raffle/internal/database"
	"go-gin-raffle/internal/journal"
	"go-gin-raffle/internal/model"
	"go-gin-raffle/internal/raffle"
	"go-gin-raffle/internal/randomness"
	"go-gin-raffle/internal/repository"
	"go-gin-raffle/internal/scheduler"
	apperrors "go-gin-raffle/pkg/app_errors"
	"go-gin-raffle/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type RaffleService interface {
	List(ctx context.Context) ([]*model.Raffle, error)
	GetByRaffleID(ctx context.Context, raffleID uuid.UUID) (*model.Raffle, error)
	Create(ctx context.Context, req model.CreateRaffleRequest) (*model.Raffle, error)
	// 購票：從 buyer 帳戶扣票價併入獎池
	BuyTicket(ctx context.Context, raffleID uuid.UUID, buyer uuid.UUID) (*model.Ticket, error)
	// 開獎：任何人皆可呼叫，回傳中獎票
	Resolve(ctx context.Context, raffleID uuid.UUID, caller uuid.UUID) (uuid.UUID, error)
	// 領獎：claimer 必須持有中獎票，獎池全額入帳
	ClaimPrize(ctx context.Context, raffleID uuid.UUID, ticketID uuid.UUID, claimer uuid.UUID) (*model.Payout, error)
	ListTickets(ctx context.Context, raffleID uuid.UUID) ([]*model.Ticket, error)
	Journal(ctx context.Context, raffleID uuid.UUID) ([]*journal.Entry, error)
	Proof(ctx context.Context, raffleID uuid.UUID) (*randomness.Proof, error)
}

// RaffleServiceDeps Snapshots、Journal、Deadlines 可為 nil
type RaffleServiceDeps struct {
	DB         database.TxBeginner
	Raffles    repository.RaffleRepository
	Tickets    repository.TicketRepository
	Accounts   repository.AccountRepository
	Snapshots  cache.RaffleSnapshotCache
	Journal    journal.Journal
	Deadlines  scheduler.DeadlineIndex
	Clock      clock.Clock
	Randomness randomness.Source
}

type RaffleServiceImpl struct {
	db         database.TxBeginner
	raffles    repository.RaffleRepository
	tickets    repository.TicketRepository
	accounts   repository.AccountRepository
	snapshots  cache.RaffleSnapshotCache
	journal    journal.Journal
	deadlines  scheduler.DeadlineIndex
	clock      clock.Clock
	randomness randomness.Source
	log        *zap.Logger
}

func NewRaffleService(deps RaffleServiceDeps) RaffleService {
	return &RaffleServiceImpl{
		db:         deps.DB,
		raffles:    deps.Raffles,
		tickets:    deps.Tickets,
		accounts:   deps.Accounts,
		snapshots:  deps.Snapshots,
		journal:    deps.Journal,
		deadlines:  deps.Deadlines,
		clock:      deps.Clock,
		randomness: deps.Randomness,
		log:        logger.WithComponent("service"),
	}
}

func (s *RaffleServiceImpl) List(ctx context.Context) ([]*model.Raffle, error) {
	return s.raffles.List(ctx)
}

// GetByRaffleID 先讀快照，miss 時回源資料庫並回填
func (s *RaffleServiceImpl) GetByRaffleID(ctx context.Context, raffleID uuid.UUID) (*model.Raffle, error) {
	if s.snapshots != nil {
		r, err := s.snapshots.Get(ctx, raffleID)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("read snapshot failed", zap.String("raffle_id", raffleID.String()), zap.Error(err))
		}
	}

	r, err := s.raffles.FindByRaffleID(ctx, raffleID)
	if err != nil {
		return nil, err
	}
	s.refreshSnapshot(ctx, r)
	return r, nil
}

func (s *RaffleServiceImpl) Create(ctx context.Context, req model.CreateRaffleRequest) (*model.Raffle, error) {
	if req.TicketPrice == 0 || req.Duration == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	r, err := s.raffles.Create(ctx, raffle.Create(s.clock, req.TicketPrice, req.Duration))
	if err != nil {
		return nil, err
	}

	s.refreshSnapshot(ctx, r)
	entry := journal.NewEntry(journal.KindCreated, r.RaffleID, r.Version, s.clock.NowMs())
	entry.Amount = r.TicketPrice
	s.appendJournal(ctx, entry)
	if s.deadlines != nil {
		if err := s.deadlines.Schedule(ctx, r.RaffleID, r.RedemptionTime); err != nil {
			s.log.Warn("schedule raffle failed", zap.String("raffle_id", r.RaffleID.String()), zap.Error(err))
		}
	}
	return r, nil
}

func (s *RaffleServiceImpl) BuyTicket(ctx context.Context, raffleID uuid.UUID, buyer uuid.UUID) (*model.Ticket, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 1. 固定先鎖抽獎再鎖帳戶
	r, err := s.raffles.FindByRaffleIDWithLock(ctx, tx, raffleID)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.FindByAccountIDWithLock(ctx, tx, buyer)
	if err != nil {
		return nil, err
	}

	// 2. 帳戶餘額整筆轉成付款 coin，找零回存
	payment := balance.NewCoin(account.Balance.WithdrawAll())
	ticket, err := raffle.BuyTicket(r, payment, buyer)
	if err != nil {
		return nil, err
	}
	account.Balance = payment.IntoBalance()

	// 3. 寫回
	if _, err := s.tickets.Create(ctx, tx, ticket); err != nil {
		return nil, err
	}
	if err := s.raffles.UpdateState(ctx, tx, r); err != nil {
		return nil, err
	}
	if err := s.accounts.UpdateBalance(ctx, tx, account); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.refreshSnapshot(ctx, r)
	entry := journal.NewEntry(journal.KindTicket, r.RaffleID, r.Version, s.clock.NowMs())
	entry.Actor = buyer.String()
	entry.TicketID = ticket.TicketID.String()
	entry.Amount = r.TicketPrice
	s.appendJournal(ctx, entry)

	return ticket, nil
}

func (s *RaffleServiceImpl) Resolve(ctx context.Context, raffleID uuid.UUID, caller uuid.UUID) (uuid.UUID, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback(ctx)

	r, err := s.raffles.FindByRaffleIDWithLock(ctx, tx, raffleID)
	if err != nil {
		return uuid.Nil, err
	}

	src := randomness.NewRecorder(s.randomness, raffle.DrawContext(r))
	winner, err := raffle.Resolve(r, s.clock, src, caller)
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.raffles.UpdateState(ctx, tx, r); err != nil {
		return uuid.Nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, err
	}

	s.log.Info("raffle resolved",
		zap.String("raffle_id", raffleID.String()),
		zap.String("winning_ticket", winner.String()),
		zap.Int("tickets_sold", len(r.SoldTickets)),
	)

	s.refreshSnapshot(ctx, r)
	entry := journal.NewEntry(journal.KindResolved, r.RaffleID, r.Version, s.clock.NowMs())
	entry.Actor = caller.String()
	entry.TicketID = winner.String()
	entry.Amount = r.Pot.Value()
	entry.Proof = src.Proof()
	s.appendJournal(ctx, entry)
	if s.deadlines != nil {
		if err := s.deadlines.Remove(ctx, raffleID); err != nil {
			s.log.Warn("unschedule raffle failed", zap.String("raffle_id", raffleID.String()), zap.Error(err))
		}
	}

	return winner, nil
}

func (s *RaffleServiceImpl) ClaimPrize(ctx context.Context, raffleID uuid.UUID, ticketID uuid.UUID, claimer uuid.UUID) (*model.Payout, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	r, err := s.raffles.FindByRaffleIDWithLock(ctx, tx, raffleID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.FindByTicketIDWithLock(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}
	// 票券為持有憑證：只有持有者能出示
	if ticket.Owner != claimer {
		return nil, apperrors.ErrTicketNotFound
	}
	account, err := s.accounts.FindByAccountIDWithLock(ctx, tx, claimer)
	if err != nil {
		return nil, err
	}

	payout, err := raffle.ClaimPrize(r, s.clock, ticket, claimer)
	if err != nil {
		return nil, err
	}
	prize := payout.Coin.IntoBalance()
	if _, err := account.Balance.Join(&prize); err != nil {
		return nil, err
	}

	if err := s.tickets.Destroy(ctx, tx, ticket.TicketID, *ticket.DestroyedAt); err != nil {
		return nil, err
	}
	if err := s.raffles.UpdateState(ctx, tx, r); err != nil {
		return nil, err
	}
	if err := s.accounts.UpdateBalance(ctx, tx, account); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.refreshSnapshot(ctx, r)
	entry := journal.NewEntry(journal.KindClaimed, r.RaffleID, r.Version, s.clock.NowMs())
	entry.Actor = claimer.String()
	entry.TicketID = ticket.TicketID.String()
	entry.Amount = payout.Amount
	s.appendJournal(ctx, entry)

	payout.Coin = nil
	return payout, nil
}

func (s *RaffleServiceImpl) ListTickets(ctx context.Context, raffleID uuid.UUID) ([]*model.Ticket, error) {
	if _, err := s.raffles.FindByRaffleID(ctx, raffleID); err != nil {
		return nil, err
	}
	return s.tickets.ListByRaffle(ctx, raffleID)
}

func (s *RaffleServiceImpl) Journal(ctx context.Context, raffleID uuid.UUID) ([]*journal.Entry, error) {
	if s.journal == nil {
		return []*journal.Entry{}, nil
	}
	return s.journal.List(ctx, raffleID)
}

func (s *RaffleServiceImpl) Proof(ctx context.Context, raffleID uuid.UUID) (*randomness.Proof, error) {
	r, err := s.GetByRaffleID(ctx, raffleID)
	if err != nil {
		return nil, err
	}
	if !r.IsResolved() {
		return nil, apperrors.ErrNotResolved
	}
	if s.journal == nil {
		return nil, journal.ErrProofNotFound
	}
	return s.journal.Proof(ctx, raffleID)
}

func (s *RaffleServiceImpl) refreshSnapshot(ctx context.Context, r *model.Raffle) {
	if s.snapshots == nil {
		return
	}
	if _, err := s.snapshots.Put(ctx, r); err != nil {
		s.log.Warn("write snapshot failed", zap.String("raffle_id", r.RaffleID.String()), zap.Error(err))
	}
}

func (s *RaffleServiceImpl) appendJournal(ctx context.Context, entry *journal.Entry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Append(ctx, entry); err != nil {
		s.log.Warn("append journal failed", zap.String("raffle_id", entry.RaffleID), zap.String("kind", entry.Kind), zap.Error(err))
	}
}

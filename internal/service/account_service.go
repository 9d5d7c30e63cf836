package service

import (
	"context"
	"strings"

	"go-gin-raffle/internal/balance"
	"go-gin-raffle/internal/database"
	"go-gin-raffle/internal/model"
	"go-gin-raffle/internal/repository"
	apperrors "go-gin-raffle/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AccountService interface {
	Open(ctx context.Context, req model.CreateAccountRequest) (*model.Account, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*model.Account, error)
	// 儲值：外部資金進入系統的唯一入口
	Deposit(ctx context.Context, accountID uuid.UUID, amount uint64) (*model.Account, error)
	ListTickets(ctx context.Context, accountID uuid.UUID) ([]*model.Ticket, error)
}

type AccountServiceImpl struct {
	db       database.TxBeginner
	accounts repository.AccountRepository
	tickets  repository.TicketRepository
}

func NewAccountService(db database.TxBeginner, accounts repository.AccountRepository, tickets repository.TicketRepository) AccountService {
	return &AccountServiceImpl{
		db:       db,
		accounts: accounts,
		tickets:  tickets,
	}
}

func (s *AccountServiceImpl) Open(ctx context.Context, req model.CreateAccountRequest) (*model.Account, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.ErrInvalidInput
	}
	return s.accounts.Create(ctx, &model.Account{
		AccountID: uuid.New(),
		Name:      name,
		Balance:   balance.Zero(),
	})
}

func (s *AccountServiceImpl) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*model.Account, error) {
	return s.accounts.FindByAccountID(ctx, accountID)
}

func (s *AccountServiceImpl) Deposit(ctx context.Context, accountID uuid.UUID, amount uint64) (*model.Account, error) {
	if amount == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := s.accounts.FindByAccountIDWithLock(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	deposit := balance.Mint(amount)
	if _, err := account.Balance.Join(&deposit); err != nil {
		return nil, err
	}

	if err := s.accounts.UpdateBalance(ctx, tx, account); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *AccountServiceImpl) ListTickets(ctx context.Context, accountID uuid.UUID) ([]*model.Ticket, error) {
	if _, err := s.accounts.FindByAccountID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.tickets.ListByOwner(ctx, accountID)
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"go-gin-raffle/internal/balance"
	"go-gin-raffle/internal/database"
	"go-gin-raffle/internal/model"
	apperrors "go-gin-raffle/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) (*model.Account, error)
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*model.Account, error)

	// Transaction methods
	FindByAccountIDWithLock(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*model.Account, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, account *model.Account) error
}

type AccountRepositoryImpl struct {
	pool database.Querier
}

func NewAccountRepository(pool database.Querier) AccountRepository {
	return &AccountRepositoryImpl{
		pool: pool,
	}
}

const accountColumns = `id, account_id, name, balance::text, created_at, updated_at`

func scanAccount(row pgx.Row) (*model.Account, error) {
	var account model.Account
	var amount string
	err := row.Scan(
		&account.ID,
		&account.AccountID,
		&account.Name,
		&amount,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}
	account.Balance = balance.Restore(v)
	return &account, nil
}

func (r *AccountRepositoryImpl) Create(ctx context.Context, account *model.Account) (*model.Account, error) {
	query := `
		INSERT INTO accounts (account_id, name, balance)
		VALUES ($1, $2, $3::numeric)
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		account.AccountID, account.Name, formatAmount(account.Balance.Value()),
	).Scan(
		&account.ID,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}

	return account, nil
}

func (r *AccountRepositoryImpl) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (r *AccountRepositoryImpl) FindByAccountIDWithLock(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1 FOR UPDATE`

	account, err := scanAccount(tx.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (r *AccountRepositoryImpl) UpdateBalance(ctx context.Context, tx pgx.Tx, account *model.Account) error {
	query := `
		UPDATE accounts
		SET balance = $1::numeric, updated_at = NOW()
		WHERE account_id = $2
		RETURNING updated_at
	`

	err := tx.QueryRow(ctx, query,
		formatAmount(account.Balance.Value()), account.AccountID,
	).Scan(&account.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrAccountNotFound
		}
		return fmt.Errorf("update account %s: %w", account.AccountID, err)
	}
	return nil
}

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

type RaffleRepository interface {
	Create(ctx context.Context, raffle *model.Raffle) (*model.Raffle, error)
	List(ctx context.Context) ([]*model.Raffle, error)
	FindByRaffleID(ctx context.Context, raffleID uuid.UUID) (*model.Raffle, error)

	// Transaction methods
	FindByRaffleIDWithLock(ctx context.Context, tx pgx.Tx, raffleID uuid.UUID) (*model.Raffle, error)
	UpdateState(ctx context.Context, tx pgx.Tx, raffle *model.Raffle) error
}

type RaffleRepositoryImpl struct {
	pool database.Querier
}

func NewRaffleRepository(pool database.Querier) RaffleRepository {
	return &RaffleRepositoryImpl{
		pool: pool,
	}
}

const raffleColumns = `
	r.id, r.raffle_id, r.ticket_price::text, r.redemption_time, r.pot::text,
	r.winning_ticket, r.prize_claimed, r.version, r.created_at, r.updated_at
`

// soldColumn 與抽獎列在同一個 snapshot 讀出已售票清單
const soldColumn = `,
	ARRAY(
		SELECT t.ticket_id::text FROM raffle_tickets t
		WHERE t.raffle_id = r.raffle_id
		ORDER BY t.seq
	)
`

// scanRaffle 依 withSold 決定是否掃描 soldColumn
func scanRaffle(row pgx.Row, withSold bool) (*model.Raffle, error) {
	var raffle model.Raffle
	var price, pot string
	var sold []string

	dest := []any{
		&raffle.ID,
		&raffle.RaffleID,
		&price,
		&raffle.RedemptionTime,
		&pot,
		&raffle.WinningTicket,
		&raffle.PrizeClaimed,
		&raffle.Version,
		&raffle.CreatedAt,
		&raffle.UpdatedAt,
	}
	if withSold {
		dest = append(dest, &sold)
	}
	err := row.Scan(dest...)
	if err != nil {
		return nil, err
	}

	if raffle.TicketPrice, err = parseAmount(price); err != nil {
		return nil, err
	}
	potValue, err := parseAmount(pot)
	if err != nil {
		return nil, err
	}
	raffle.Pot = balance.Restore(potValue)
	raffle.SoldTickets = []uuid.UUID{}
	if withSold {
		if raffle.SoldTickets, err = parseUUIDs(sold); err != nil {
			return nil, err
		}
	}
	return &raffle, nil
}

func (r *RaffleRepositoryImpl) Create(ctx context.Context, raffle *model.Raffle) (*model.Raffle, error) {
	query := `
		INSERT INTO raffles (raffle_id, ticket_price, redemption_time, pot, version)
		VALUES ($1, $2::numeric, $3, $4::numeric, 1)
		RETURNING id, version, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		raffle.RaffleID,
		formatAmount(raffle.TicketPrice),
		raffle.RedemptionTime,
		formatAmount(raffle.Pot.Value()),
	).Scan(
		&raffle.ID,
		&raffle.Version,
		&raffle.CreatedAt,
		&raffle.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert raffle: %w", err)
	}

	return raffle, nil
}

func (r *RaffleRepositoryImpl) List(ctx context.Context) ([]*model.Raffle, error) {
	query := `SELECT ` + raffleColumns + soldColumn + `
		FROM raffles r
		ORDER BY r.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	raffles := make([]*model.Raffle, 0)
	for rows.Next() {
		raffle, err := scanRaffle(rows, true)
		if err != nil {
			return nil, err
		}
		raffles = append(raffles, raffle)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return raffles, nil
}

func (r *RaffleRepositoryImpl) FindByRaffleID(ctx context.Context, raffleID uuid.UUID) (*model.Raffle, error) {
	query := `SELECT ` + raffleColumns + soldColumn + `
		FROM raffles r
		WHERE r.raffle_id = $1
	`

	raffle, err := scanRaffle(r.pool.QueryRow(ctx, query, raffleID), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRaffleNotFound
		}
		return nil, err
	}
	return raffle, nil
}

// FindByRaffleIDWithLock 鎖住抽獎紀錄，同一筆抽獎的操作因此被序列化。
// 已售票清單在取得鎖之後另外查詢，才能看到前一個交易剛提交的票。
func (r *RaffleRepositoryImpl) FindByRaffleIDWithLock(ctx context.Context, tx pgx.Tx, raffleID uuid.UUID) (*model.Raffle, error) {
	query := `SELECT ` + raffleColumns + `
		FROM raffles r
		WHERE r.raffle_id = $1
		FOR UPDATE
	`

	raffle, err := scanRaffle(tx.QueryRow(ctx, query, raffleID), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRaffleNotFound
		}
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT ticket_id::text FROM raffle_tickets
		WHERE raffle_id = $1
		ORDER BY seq
	`, raffleID)
	if err != nil {
		return nil, err
	}
	sold, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("load sold tickets: %w", err)
	}
	if raffle.SoldTickets, err = parseUUIDs(sold); err != nil {
		return nil, err
	}
	return raffle, nil
}

// UpdateState 寫回獎池、中獎票與領獎狀態，版本號 +1
func (r *RaffleRepositoryImpl) UpdateState(ctx context.Context, tx pgx.Tx, raffle *model.Raffle) error {
	query := `
		UPDATE raffles
		SET pot = $1::numeric,
			winning_ticket = $2,
			prize_claimed = $3,
			version = version + 1,
			updated_at = NOW()
		WHERE raffle_id = $4
		RETURNING version, updated_at
	`

	err := tx.QueryRow(ctx, query,
		formatAmount(raffle.Pot.Value()),
		raffle.WinningTicket,
		raffle.PrizeClaimed,
		raffle.RaffleID,
	).Scan(&raffle.Version, &raffle.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrRaffleNotFound
		}
		return fmt.Errorf("update raffle %s: %w", raffle.RaffleID, err)
	}
	return nil
}

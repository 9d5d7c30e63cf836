package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-gin-raffle/internal/database"
	"go-gin-raffle/internal/model"
	apperrors "go-gin-raffle/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TicketRepository interface {
	ListByRaffle(ctx context.Context, raffleID uuid.UUID) ([]*model.Ticket, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Ticket, error)
	FindByTicketID(ctx context.Context, ticketID uuid.UUID) (*model.Ticket, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error)
	FindByTicketIDWithLock(ctx context.Context, tx pgx.Tx, ticketID uuid.UUID) (*model.Ticket, error)
	Destroy(ctx context.Context, tx pgx.Tx, ticketID uuid.UUID, at time.Time) error
}

type TicketRepositoryImpl struct {
	pool database.Querier
}

func NewTicketRepository(pool database.Querier) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

const ticketColumns = `id, ticket_id, raffle_id, seq, owner_id, created_at, destroyed_at`

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var ticket model.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.TicketID,
		&ticket.RaffleID,
		&ticket.Seq,
		&ticket.Owner,
		&ticket.CreatedAt,
		&ticket.DestroyedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error) {
	query := `
		INSERT INTO raffle_tickets (ticket_id, raffle_id, seq, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query,
		ticket.TicketID, ticket.RaffleID, ticket.Seq, ticket.Owner,
	).Scan(
		&ticket.ID,
		&ticket.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert ticket: %w", err)
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) list(ctx context.Context, query string, arg uuid.UUID) ([]*model.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

// ListByRaffle 依售出順序列出，包含已銷毀的票
func (r *TicketRepositoryImpl) ListByRaffle(ctx context.Context, raffleID uuid.UUID) ([]*model.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM raffle_tickets
		WHERE raffle_id = $1
		ORDER BY seq
	`
	return r.list(ctx, query, raffleID)
}

func (r *TicketRepositoryImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM raffle_tickets
		WHERE owner_id = $1 AND destroyed_at IS NULL
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, ownerID)
}

func (r *TicketRepositoryImpl) FindByTicketID(ctx context.Context, ticketID uuid.UUID) (*model.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM raffle_tickets
		WHERE ticket_id = $1
	`

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, ticketID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (r *TicketRepositoryImpl) FindByTicketIDWithLock(ctx context.Context, tx pgx.Tx, ticketID uuid.UUID) (*model.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM raffle_tickets
		WHERE ticket_id = $1
		FOR UPDATE
	`

	ticket, err := scanTicket(tx.QueryRow(ctx, query, ticketID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

// Destroy 只銷毀尚未銷毀的票
func (r *TicketRepositoryImpl) Destroy(ctx context.Context, tx pgx.Tx, ticketID uuid.UUID, at time.Time) error {
	query := `
		UPDATE raffle_tickets
		SET destroyed_at = $1
		WHERE ticket_id = $2 AND destroyed_at IS NULL
	`

	result, err := tx.Exec(ctx, query, at, ticketID)
	if err != nil {
		return fmt.Errorf("destroy ticket %s: %w", ticketID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}
	return nil
}

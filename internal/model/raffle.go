package model

import (
	"time"

	"go-gin-raffle/internal/balance"

	"github.com/google/uuid"
)

// RaffleStatus 抽獎狀態類型（由紀錄推導，不另外儲存）
type RaffleStatus string

const (
	RaffleStatusOpen     RaffleStatus = "open"
	RaffleStatusResolved RaffleStatus = "resolved"
	RaffleStatusClaimed  RaffleStatus = "claimed"
)

// Raffle 抽獎模型
type Raffle struct {
	ID             int             `json:"id" db:"id"`
	RaffleID       uuid.UUID       `json:"raffle_id" db:"raffle_id"`
	TicketPrice    uint64          `json:"ticket_price" db:"ticket_price"`
	RedemptionTime int64           `json:"redemption_time" db:"redemption_time"`
	Pot            balance.Balance `json:"pot" db:"pot"`
	SoldTickets    []uuid.UUID     `json:"sold_tickets" db:"-"`
	WinningTicket  *uuid.UUID      `json:"winning_ticket,omitempty" db:"winning_ticket"`
	PrizeClaimed   bool            `json:"prize_claimed" db:"prize_claimed"`
	Version        int64           `json:"version" db:"version"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

func (r *Raffle) IsResolved() bool {
	return r.WinningTicket != nil
}

func (r *Raffle) Status() RaffleStatus {
	switch {
	case r.PrizeClaimed:
		return RaffleStatusClaimed
	case r.IsResolved():
		return RaffleStatusResolved
	}
	return RaffleStatusOpen
}

// HasSold 檢查 ticketID 是否在已售出清單中
func (r *Raffle) HasSold(ticketID uuid.UUID) bool {
	for _, id := range r.SoldTickets {
		if id == ticketID {
			return true
		}
	}
	return false
}

// CreateRaffleRequest 建立抽獎請求，Duration 單位為秒
type CreateRaffleRequest struct {
	TicketPrice uint64 `json:"ticket_price" binding:"required,min=1"`
	Duration    uint64 `json:"duration" binding:"required,min=1"`
}

type BuyTicketRequest struct {
	AccountID uuid.UUID `json:"account_id" binding:"required"`
}

// ResolveRaffleRequest CallerID 可省略，任何人都能開獎
type ResolveRaffleRequest struct {
	CallerID uuid.UUID `json:"caller_id"`
}

type ClaimPrizeRequest struct {
	AccountID uuid.UUID `json:"account_id" binding:"required"`
	TicketID  uuid.UUID `json:"ticket_id" binding:"required"`
}

// RaffleResponse 抽獎響應
type RaffleResponse struct {
	RaffleID       uuid.UUID    `json:"raffle_id"`
	TicketPrice    uint64       `json:"ticket_price"`
	RedemptionTime int64        `json:"redemption_time"`
	Pot            uint64       `json:"pot"`
	TicketsSold    int          `json:"tickets_sold"`
	WinningTicket  *uuid.UUID   `json:"winning_ticket,omitempty"`
	Status         RaffleStatus `json:"status"`
	Version        int64        `json:"version"`
}

func NewRaffleResponse(r *Raffle) RaffleResponse {
	return RaffleResponse{
		RaffleID:       r.RaffleID,
		TicketPrice:    r.TicketPrice,
		RedemptionTime: r.RedemptionTime,
		Pot:            r.Pot.Value(),
		TicketsSold:    len(r.SoldTickets),
		WinningTicket:  r.WinningTicket,
		Status:         r.Status(),
		Version:        r.Version,
	}
}

package model

import (
	"time"

	"go-gin-raffle/internal/balance"

	"github.com/google/uuid"
)

// Account 代幣帳戶，購票付款與領獎入帳的對象
type Account struct {
	ID        int             `json:"id" db:"id"`
	AccountID uuid.UUID       `json:"account_id" db:"account_id"`
	Name      string          `json:"name" db:"name"`
	Balance   balance.Balance `json:"balance" db:"balance"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

type CreateAccountRequest struct {
	Name string `json:"name" binding:"required"`
}

type DepositRequest struct {
	Amount uint64 `json:"amount" binding:"required,min=1"`
}

// Payout 領獎結果：整個獎池以 Coin 形式交給 Recipient，入帳後 Coin 為 nil
type Payout struct {
	RaffleID  uuid.UUID     `json:"raffle_id"`
	Recipient uuid.UUID     `json:"recipient"`
	Amount    uint64        `json:"amount"`
	Coin      *balance.Coin `json:"-"`
}

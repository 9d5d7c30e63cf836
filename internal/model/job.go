package model

import (
	"time"

	"github.com/google/uuid"
)

// ResolveJob 到期待開獎的工作
type ResolveJob struct {
	RaffleID       uuid.UUID `json:"raffle_id"`
	RedemptionTime int64     `json:"redemption_time"`
	EnqueuedAt     time.Time `json:"enqueued_at"`
}

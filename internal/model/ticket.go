package model

import (
	"time"

	"github.com/google/uuid"
)

// Ticket 票券模型，持有者憑票兌獎
type Ticket struct {
	ID          int        `json:"id" db:"id"`
	TicketID    uuid.UUID  `json:"ticket_id" db:"ticket_id"`
	RaffleID    uuid.UUID  `json:"raffle_id" db:"raffle_id"`
	Seq         int        `json:"seq" db:"seq"`
	Owner       uuid.UUID  `json:"owner" db:"owner_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	DestroyedAt *time.Time `json:"destroyed_at,omitempty" db:"destroyed_at"`
}

// IsDestroyed 檢查票券是否已兌獎銷毀
func (t *Ticket) IsDestroyed() bool {
	return t.DestroyedAt != nil
}

func (t *Ticket) Destroy(at time.Time) {
	t.DestroyedAt = &at
}

// Package raffle 抽獎狀態機。每個函式要嘛完整套用，要嘛不動任何參數；
// 持久化與鎖由呼叫端負責。
package raffle

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"math"
	"time"

	"go-gin-raffle/internal/balance"
	"go-gin-raffle/internal/model"
	apperrors "go-gin-raffle/pkg/app_errors"

	"github.com/google/uuid"
)

const msPerSecond = 1000

var ErrIndexOutOfRange = errors.New("raffle: drawn index out of range")

type Clock interface {
	NowMs() int64
}

// Randomness 回傳 [lo, hi] 閉區間內的均勻整數
type Randomness interface {
	DrawUniform(lo, hi uint64) (uint64, error)
}

// Create 建立新抽獎：獎池為空、沒有票、尚未開獎
func Create(c Clock, ticketPrice, durationSec uint64) *model.Raffle {
	return &model.Raffle{
		RaffleID:       uuid.New(),
		TicketPrice:    ticketPrice,
		RedemptionTime: deadline(c.NowMs(), durationSec),
		Pot:            balance.Zero(),
		SoldTickets:    []uuid.UUID{},
	}
}

// deadline 溢位時停在 MaxInt64
func deadline(nowMs int64, durationSec uint64) int64 {
	if durationSec > uint64(math.MaxInt64/msPerSecond) {
		return math.MaxInt64
	}
	d := int64(durationSec) * msPerSecond
	if nowMs > math.MaxInt64-d {
		return math.MaxInt64
	}
	return nowMs + d
}

// BuyTicket 從 payment 扣除票價併入獎池，並發出一張新票給 buyer
func BuyTicket(r *model.Raffle, payment *balance.Coin, buyer uuid.UUID) (*model.Ticket, error) {
	if r.IsResolved() {
		return nil, apperrors.ErrAlreadyResolved
	}
	// 先檢查溢位，避免扣款後才失敗
	if !r.Pot.CanJoin(r.TicketPrice) {
		return nil, apperrors.ErrBalanceOverflow
	}

	paid, err := payment.Split(r.TicketPrice)
	if err != nil {
		return nil, err
	}
	if _, err := r.Pot.Join(&paid); err != nil {
		return nil, err
	}

	ticket := &model.Ticket{
		TicketID: uuid.New(),
		RaffleID: r.RaffleID,
		Seq:      len(r.SoldTickets),
		Owner:    buyer,
	}
	r.SoldTickets = append(r.SoldTickets, ticket.TicketID)
	return ticket, nil
}

// Resolve 開獎，任何人都可以呼叫；caller 只用於紀錄
func Resolve(r *model.Raffle, c Clock, src Randomness, caller uuid.UUID) (uuid.UUID, error) {
	if r.IsResolved() {
		return uuid.Nil, apperrors.ErrAlreadyResolved
	}
	if c.NowMs() < r.RedemptionTime {
		return uuid.Nil, apperrors.ErrNotResolvableYet
	}
	n := uint64(len(r.SoldTickets))
	if n == 0 {
		return uuid.Nil, apperrors.ErrNoTicketsSold
	}

	idx, err := src.DrawUniform(0, n-1)
	if err != nil {
		return uuid.Nil, fmt.Errorf("draw winning index: %w", err)
	}
	if idx >= n {
		return uuid.Nil, fmt.Errorf("%w: %d not in [0, %d]", ErrIndexOutOfRange, idx, n-1)
	}

	winner := r.SoldTickets[idx]
	r.WinningTicket = &winner
	return winner, nil
}

// DrawContext 開獎時簽進隨機證明的內容：抽獎 id 加上依序的已售票券
func DrawContext(r *model.Raffle) []byte {
	h := sha256.New()
	h.Write(r.RaffleID[:])
	for _, id := range r.SoldTickets {
		h.Write(id[:])
	}
	return h.Sum(nil)
}

// ClaimPrize 銷毀中獎票並把整個獎池交給 claimer
func ClaimPrize(r *model.Raffle, c Clock, ticket *model.Ticket, claimer uuid.UUID) (*model.Payout, error) {
	if !r.IsResolved() {
		return nil, apperrors.ErrNotResolved
	}
	if ticket == nil || ticket.IsDestroyed() {
		return nil, apperrors.ErrTicketNotFound
	}
	if ticket.RaffleID != r.RaffleID || ticket.TicketID != *r.WinningTicket {
		return nil, apperrors.ErrTicketDidNotWin
	}
	if r.PrizeClaimed {
		return nil, apperrors.ErrPrizeAlreadyClaimed
	}

	ticket.Destroy(time.UnixMilli(c.NowMs()).UTC())
	prize := r.Pot.WithdrawAll()
	r.PrizeClaimed = true

	return &model.Payout{
		RaffleID:  r.RaffleID,
		Recipient: claimer,
		Amount:    prize.Value(),
		Coin:      balance.NewCoin(prize),
	}, nil
}

package balance

import (
	"encoding/json"
	"math/bits"

	apperrors "go-gin-raffle/pkg/app_errors"

	"github.com/google/uuid"
)

// Balance 是同一種代幣的不可為負數量
// 數量只能經由 Split / Join / WithdrawAll 在 Balance 之間移動
type Balance struct {
	value uint64
}

func Zero() Balance {
	return Balance{}
}

// Mint 只給外部入金使用（帳戶儲值），系統內部的移動一律走 Split / Join
func Mint(amount uint64) Balance {
	return Balance{value: amount}
}

// Restore 給儲存層把資料庫中的數值還原成 Balance
func Restore(amount uint64) Balance {
	return Balance{value: amount}
}

func (b Balance) Value() uint64 {
	return b.value
}

func (b Balance) IsZero() bool {
	return b.value == 0
}

// Split 從 b 切出 amount；餘額不足時 b 保持不變
func (b *Balance) Split(amount uint64) (Balance, error) {
	if amount > b.value {
		return Balance{}, apperrors.ErrInsufficientBalance
	}
	b.value -= amount
	return Balance{value: amount}, nil
}

// CanJoin 檢查合併 amount 是否會溢位
func (b Balance) CanJoin(amount uint64) bool {
	_, carry := bits.Add64(b.value, amount, 0)
	return carry == 0
}

// Join 把 other 併入 b 並清空 other，回傳合併後的數量
func (b *Balance) Join(other *Balance) (uint64, error) {
	if !b.CanJoin(other.value) {
		return b.value, apperrors.ErrBalanceOverflow
	}
	b.value += other.value
	other.value = 0
	return b.value, nil
}

// WithdrawAll 取出全部數量，b 歸零
func (b *Balance) WithdrawAll() Balance {
	out := Balance{value: b.value}
	b.value = 0
	return out
}

func (b Balance) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.value)
}

func (b *Balance) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &b.value)
}

// Coin 是可轉移的付款物件，包著一筆 Balance
type Coin struct {
	id      uuid.UUID
	balance Balance
}

func NewCoin(b Balance) *Coin {
	return &Coin{id: uuid.New(), balance: b}
}

func (c *Coin) ID() uuid.UUID {
	return c.id
}

func (c *Coin) Value() uint64 {
	return c.balance.value
}

// Split 從 coin 切出 amount，餘額留在原 coin
func (c *Coin) Split(amount uint64) (Balance, error) {
	return c.balance.Split(amount)
}

// IntoBalance 取出 coin 內的全部數量，coin 歸零
func (c *Coin) IntoBalance() Balance {
	return c.balance.WithdrawAll()
}

package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// TxBeginner 開啟交易，*pgxpool.Pool 即滿足此介面
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Querier 同時涵蓋 pool 與 tx 的查詢方法
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ TxBeginner = (*pgxpool.Pool)(nil)
	_ Querier    = (*pgxpool.Pool)(nil)
)

// Migrate 套用內嵌的 schema，可重複執行
func Migrate(ctx context.Context, db Querier) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Truncate 清空所有資料表，測試用
func Truncate(ctx context.Context, db Querier) error {
	_, err := db.Exec(ctx, "TRUNCATE raffle_tickets, raffles, accounts RESTART IDENTITY CASCADE")
	return err
}

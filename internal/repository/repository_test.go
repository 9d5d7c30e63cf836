package repository_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"go-gin-raffle/internal/balance"
	"go-gin-raffle/internal/database"
	"go-gin-raffle/internal/model"
	"go-gin-raffle/internal/repository"
	"go-gin-raffle/internal/testutil"
	apperrors "go-gin-raffle/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDB 為 nil 代表測試資料庫不可用，整合測試會被略過
var testDB *pgxpool.Pool

func TestMain(m *testing.M) {
	pool, cleanup, err := testutil.SetupPostgres()
	if err != nil {
		log.Printf("Skipping repository integration tests: %v", err)
	} else {
		testDB = pool
	}

	code := m.Run()
	if cleanup != nil {
		cleanup()
	}
	os.Exit(code)
}

func getTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testDB == nil {
		t.Skip("test database not available")
	}
	require.NoError(t, database.Truncate(context.Background(), testDB))
	return testDB
}

func withTx(t *testing.T, db *pgxpool.Pool, fn func(tx pgx.Tx)) {
	t.Helper()
	ctx := context.Background()
	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	fn(tx)
	require.NoError(t, tx.Commit(ctx))
}

func createTestAccount(t *testing.T, db *pgxpool.Pool, amount uint64) *model.Account {
	t.Helper()
	repo := repository.NewAccountRepository(db)
	account, err := repo.Create(context.Background(), &model.Account{
		AccountID: uuid.New(),
		Name:      "tester",
		Balance:   balance.Mint(amount),
	})
	require.NoError(t, err)
	return account
}

func createTestRaffle(t *testing.T, db *pgxpool.Pool, price uint64) *model.Raffle {
	t.Helper()
	repo := repository.NewRaffleRepository(db)
	raffle, err := repo.Create(context.Background(), &model.Raffle{
		RaffleID:       uuid.New(),
		TicketPrice:    price,
		RedemptionTime: time.Now().Add(time.Hour).UnixMilli(),
		Pot:            balance.Zero(),
	})
	require.NoError(t, err)
	return raffle
}

func TestRaffleRepository_CreateAndFind(t *testing.T) {
	db := getTestDB(t)
	repo := repository.NewRaffleRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		created := createTestRaffle(t, db, 18_000_000_000_000_000_000)
		assert.NotZero(t, created.ID)
		assert.Equal(t, int64(1), created.Version)

		found, err := repo.FindByRaffleID(ctx, created.RaffleID)
		require.NoError(t, err)
		assert.Equal(t, uint64(18_000_000_000_000_000_000), found.TicketPrice)
		assert.Equal(t, created.RedemptionTime, found.RedemptionTime)
		assert.True(t, found.Pot.IsZero())
		assert.Empty(t, found.SoldTickets)
		assert.Nil(t, found.WinningTicket)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.FindByRaffleID(ctx, uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrRaffleNotFound)
	})
}

func TestRaffleRepository_UpdateState(t *testing.T) {
	db := getTestDB(t)
	raffles := repository.NewRaffleRepository(db)
	tickets := repository.NewTicketRepository(db)
	ctx := context.Background()

	raffle := createTestRaffle(t, db, 100)
	owner := createTestAccount(t, db, 0)

	var ids []uuid.UUID
	withTx(t, db, func(tx pgx.Tx) {
		locked, err := raffles.FindByRaffleIDWithLock(ctx, tx, raffle.RaffleID)
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			ticket := &model.Ticket{TicketID: uuid.New(), RaffleID: raffle.RaffleID, Seq: i, Owner: owner.AccountID}
			_, err := tickets.Create(ctx, tx, ticket)
			require.NoError(t, err)
			ids = append(ids, ticket.TicketID)
		}

		locked.Pot = balance.Restore(300)
		locked.WinningTicket = &ids[1]
		require.NoError(t, raffles.UpdateState(ctx, tx, locked))
		assert.Equal(t, int64(2), locked.Version)
	})

	found, err := raffles.FindByRaffleID(ctx, raffle.RaffleID)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), found.Pot.Value())
	assert.Equal(t, ids, found.SoldTickets)
	require.NotNil(t, found.WinningTicket)
	assert.Equal(t, ids[1], *found.WinningTicket)

	list, err := raffles.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTicketRepository_Destroy(t *testing.T) {
	db := getTestDB(t)
	tickets := repository.NewTicketRepository(db)
	ctx := context.Background()

	raffle := createTestRaffle(t, db, 100)
	owner := createTestAccount(t, db, 0)
	ticket := &model.Ticket{TicketID: uuid.New(), RaffleID: raffle.RaffleID, Seq: 0, Owner: owner.AccountID}

	withTx(t, db, func(tx pgx.Tx) {
		_, err := tickets.Create(ctx, tx, ticket)
		require.NoError(t, err)
	})

	owned, err := tickets.ListByOwner(ctx, owner.AccountID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	withTx(t, db, func(tx pgx.Tx) {
		locked, err := tickets.FindByTicketIDWithLock(ctx, tx, ticket.TicketID)
		require.NoError(t, err)
		assert.False(t, locked.IsDestroyed())
		require.NoError(t, tickets.Destroy(ctx, tx, ticket.TicketID, time.Now()))
		assert.ErrorIs(t, tickets.Destroy(ctx, tx, ticket.TicketID, time.Now()), apperrors.ErrTicketNotFound)
	})

	found, err := tickets.FindByTicketID(ctx, ticket.TicketID)
	require.NoError(t, err)
	assert.True(t, found.IsDestroyed())

	owned, err = tickets.ListByOwner(ctx, owner.AccountID)
	require.NoError(t, err)
	assert.Empty(t, owned)

	all, err := tickets.ListByRaffle(ctx, raffle.RaffleID)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = tickets.FindByTicketID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}

func TestAccountRepository_UpdateBalance(t *testing.T) {
	db := getTestDB(t)
	accounts := repository.NewAccountRepository(db)
	ctx := context.Background()

	account := createTestAccount(t, db, 500)

	withTx(t, db, func(tx pgx.Tx) {
		locked, err := accounts.FindByAccountIDWithLock(ctx, tx, account.AccountID)
		require.NoError(t, err)
		assert.Equal(t, uint64(500), locked.Balance.Value())

		_, err = locked.Balance.Split(200)
		require.NoError(t, err)
		require.NoError(t, accounts.UpdateBalance(ctx, tx, locked))
	})

	found, err := accounts.FindByAccountID(ctx, account.AccountID)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), found.Balance.Value())

	_, err = accounts.FindByAccountID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}

package mocks

import (
	"context"

	"go-gin-raffle/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type MockRaffleRepository struct {
	mock.Mock
}

func NewMockRaffleRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRaffleRepository {
	m := &MockRaffleRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRaffleRepository) Create(ctx context.Context, raffle *model.Raffle) (*model.Raffle, error) {
	args := m.Called(ctx, raffle)
	if rf, ok := args.Get(0).(func(context.Context, *model.Raffle) *model.Raffle); ok {
		return rf(ctx, raffle), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) List(ctx context.Context) ([]*model.Raffle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) FindByRaffleID(ctx context.Context, raffleID uuid.UUID) (*model.Raffle, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) FindByRaffleIDWithLock(ctx context.Context, tx pgx.Tx, raffleID uuid.UUID) (*model.Raffle, error) {
	args := m.Called(ctx, tx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) UpdateState(ctx context.Context, tx pgx.Tx, raffle *model.Raffle) error {
	args := m.Called(ctx, tx, raffle)
	return args.Error(0)
}

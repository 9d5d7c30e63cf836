package mocks

import (
	"context"

	"go-gin-raffle/internal/journal"
	"go-gin-raffle/internal/model"
	"go-gin-raffle/internal/randomness"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockRaffleService struct {
	mock.Mock
}

func NewMockRaffleService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRaffleService {
	m := &MockRaffleService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRaffleService) List(ctx context.Context) ([]*model.Raffle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Raffle), args.Error(1)
}

func (m *MockRaffleService) GetByRaffleID(ctx context.Context, raffleID uuid.UUID) (*model.Raffle, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Raffle), args.Error(1)
}

func (m *MockRaffleService) Create(ctx context.Context, req model.CreateRaffleRequest) (*model.Raffle, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Raffle), args.Error(1)
}

func (m *MockRaffleService) BuyTicket(ctx context.Context, raffleID uuid.UUID, buyer uuid.UUID) (*model.Ticket, error) {
	args := m.Called(ctx, raffleID, buyer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *MockRaffleService) Resolve(ctx context.Context, raffleID uuid.UUID, caller uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, raffleID, caller)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRaffleService) ClaimPrize(ctx context.Context, raffleID uuid.UUID, ticketID uuid.UUID, claimer uuid.UUID) (*model.Payout, error) {
	args := m.Called(ctx, raffleID, ticketID, claimer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payout), args.Error(1)
}

func (m *MockRaffleService) ListTickets(ctx context.Context, raffleID uuid.UUID) ([]*model.Ticket, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *MockRaffleService) Journal(ctx context.Context, raffleID uuid.UUID) ([]*journal.Entry, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*journal.Entry), args.Error(1)
}

func (m *MockRaffleService) Proof(ctx context.Context, raffleID uuid.UUID) (*randomness.Proof, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*randomness.Proof), args.Error(1)
}

package mocks

import (
	"context"

	"go-gin-raffle/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockRaffleSnapshotCache struct {
	mock.Mock
}

func NewMockRaffleSnapshotCache(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRaffleSnapshotCache {
	m := &MockRaffleSnapshotCache{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRaffleSnapshotCache) Get(ctx context.Context, raffleID uuid.UUID) (*model.Raffle, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Raffle), args.Error(1)
}

func (m *MockRaffleSnapshotCache) Put(ctx context.Context, raffle *model.Raffle) (bool, error) {
	args := m.Called(ctx, raffle)
	return args.Bool(0), args.Error(1)
}

func (m *MockRaffleSnapshotCache) Invalidate(ctx context.Context, raffleID uuid.UUID) error {
	args := m.Called(ctx, raffleID)
	return args.Error(0)
}

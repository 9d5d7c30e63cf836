package mocks

import (
	"context"

	"go-gin-raffle/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockDeadlineIndex struct {
	mock.Mock
}

func NewMockDeadlineIndex(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockDeadlineIndex {
	m := &MockDeadlineIndex{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockDeadlineIndex) Schedule(ctx context.Context, raffleID uuid.UUID, redemptionTime int64) error {
	args := m.Called(ctx, raffleID, redemptionTime)
	return args.Error(0)
}

func (m *MockDeadlineIndex) Due(ctx context.Context, nowMs int64, limit int64) ([]*model.ResolveJob, error) {
	args := m.Called(ctx, nowMs, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ResolveJob), args.Error(1)
}

func (m *MockDeadlineIndex) Remove(ctx context.Context, raffleID uuid.UUID) error {
	args := m.Called(ctx, raffleID)
	return args.Error(0)
}

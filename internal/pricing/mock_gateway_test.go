package pricing

import (
	"context"
	"errors"

	"galachain-trade-bot-go/internal/gswap"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockGateway is a mock implementation of gswap.GatewayInterface.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GetStatus(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockGateway) Quote(ctx context.Context, tokenIn, tokenOut, amountIn string, feeTier int) (*gswap.Quote, error) {
	args := m.Called(tokenIn, tokenOut, amountIn, feeTier)
	if q := args.Get(0); q != nil {
		return q.(*gswap.Quote), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGateway) Swap(ctx context.Context, req gswap.SwapRequest) (gswap.PendingTx, error) {
	args := m.Called(req)
	if p := args.Get(0); p != nil {
		return p.(gswap.PendingTx), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGateway) BalanceOf(ctx context.Context, tokenKey string) string {
	args := m.Called(tokenKey)
	return args.String(0)
}

// stubReference is a canned external reference price source.
type stubReference struct {
	price decimal.Decimal
	err   error
	calls int
}

func (s *stubReference) GalaUSD(ctx context.Context) (decimal.Decimal, error) {
	s.calls++
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return s.price, nil
}

var errSourceDown = errors.New("source down")

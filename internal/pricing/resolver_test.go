package pricing

import (
	"context"
	"testing"

	"galachain-trade-bot-go/internal/config"
	"galachain-trade-bot-go/internal/gswap"
	"galachain-trade-bot-go/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func galaKey() string  { return models.ClassKey(models.SymbolGala) }
func gusdcKey() string { return models.ClassKey(models.SymbolGusdc) }
func gwethKey() string { return models.ClassKey(models.SymbolGweth) }

func TestResolve_StablecoinsFixedWithoutLookup(t *testing.T) {
	// Arrange: override covers GALA, so only GWETH may hit the gateway.
	mockGateway := new(MockGateway)
	mockGateway.On("Quote", gwethKey(), gusdcKey(), "1", gswap.FeeTier10000).
		Return(&gswap.Quote{AmountOut: "2600"}, nil).Once()

	resolver := NewResolver(&config.Pricing{GalaUSDOverride: 0.02}, mockGateway, nil, zap.NewNop())

	// Act
	snap := resolver.Resolve(context.Background())

	// Assert: stables are exactly 1.0 and no quote was issued for them.
	assert.True(t, snap[models.SymbolGusdc].Equal(decimal.NewFromInt(1)))
	assert.True(t, snap[models.SymbolGusdt].Equal(decimal.NewFromInt(1)))
	mockGateway.AssertExpectations(t)
	mockGateway.AssertNumberOfCalls(t, "Quote", 1)
}

func TestResolveGala_OverrideSkipsReference(t *testing.T) {
	mockGateway := new(MockGateway)
	mockGateway.On("Quote", gwethKey(), gusdcKey(), "1", gswap.FeeTier10000).
		Return(nil, errSourceDown)

	ref := &stubReference{price: decimal.RequireFromString("0.05")}
	resolver := NewResolver(&config.Pricing{GalaUSDOverride: 0.02}, mockGateway, ref, zap.NewNop())

	snap := resolver.Resolve(context.Background())

	assert.True(t, snap[models.SymbolGala].Equal(decimal.RequireFromString("0.02")))
	assert.Zero(t, ref.calls, "override must short-circuit the reference source")
}

func TestResolveGala_ReferencePreferred(t *testing.T) {
	mockGateway := new(MockGateway)
	mockGateway.On("Quote", gwethKey(), gusdcKey(), "1", gswap.FeeTier10000).
		Return(nil, errSourceDown)

	ref := &stubReference{price: decimal.RequireFromString("0.0185")}
	resolver := NewResolver(&config.Pricing{}, mockGateway, ref, zap.NewNop())

	snap := resolver.Resolve(context.Background())

	assert.True(t, snap[models.SymbolGala].Equal(decimal.RequireFromString("0.0185")))
	// The on-chain unit quote for GALA must not have been consulted.
	mockGateway.AssertNotCalled(t, "Quote", galaKey(), gusdcKey(), "1", gswap.FeeTier10000)
}

func TestResolveGala_ReferenceFailureFallsBackToUnitQuote(t *testing.T) {
	mockGateway := new(MockGateway)
	mockGateway.On("Quote", galaKey(), gusdcKey(), "1", gswap.FeeTier10000).
		Return(&gswap.Quote{AmountOut: "0.0162"}, nil)
	mockGateway.On("Quote", gwethKey(), gusdcKey(), "1", gswap.FeeTier10000).
		Return(nil, errSourceDown)

	ref := &stubReference{err: errSourceDown}
	resolver := NewResolver(&config.Pricing{}, mockGateway, ref, zap.NewNop())

	snap := resolver.Resolve(context.Background())

	assert.True(t, snap[models.SymbolGala].Equal(decimal.RequireFromString("0.0162")))
	assert.Equal(t, 1, ref.calls)
}

func TestResolveGala_AllSourcesDownUsesConstant(t *testing.T) {
	mockGateway := new(MockGateway)
	mockGateway.On("Quote", galaKey(), gusdcKey(), "1", gswap.FeeTier10000).
		Return(nil, errSourceDown)
	mockGateway.On("Quote", gwethKey(), gusdcKey(), "1", gswap.FeeTier10000).
		Return(nil, errSourceDown)

	ref := &stubReference{err: errSourceDown}
	resolver := NewResolver(&config.Pricing{}, mockGateway, ref, zap.NewNop())

	snap := resolver.Resolve(context.Background())

	assert.True(t, snap[models.SymbolGala].Equal(decimal.RequireFromString("0.017")))
	assert.True(t, snap[models.SymbolGweth].Equal(decimal.RequireFromString("2500")))
}

func TestResolve_NonPositiveUnitQuoteRejected(t *testing.T) {
	mockGateway := new(MockGateway)
	mockGateway.On("Quote", galaKey(), gusdcKey(), "1", gswap.FeeTier10000).
		Return(&gswap.Quote{AmountOut: "0"}, nil)
	mockGateway.On("Quote", gwethKey(), gusdcKey(), "1", gswap.FeeTier10000).
		Return(nil, errSourceDown)

	resolver := NewResolver(&config.Pricing{}, mockGateway, nil, zap.NewNop())

	snap := resolver.Resolve(context.Background())

	// A zero quote must never leak into the snapshot.
	assert.True(t, snap[models.SymbolGala].IsPositive())
	assert.True(t, snap[models.SymbolGala].Equal(decimal.RequireFromString("0.017")))
}

func TestSnapshotPriceNormalizesClassKeys(t *testing.T) {
	snap := Snapshot{models.SymbolGala: decimal.RequireFromString("0.017")}

	price, ok := snap.Price("GALA|Unit|none|none")

	assert.True(t, ok)
	assert.True(t, price.Equal(decimal.RequireFromString("0.017")))
}

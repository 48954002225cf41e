package pricing

import (
	"context"
	"fmt"

	"galachain-trade-bot-go/internal/config"
	"galachain-trade-bot-go/internal/gswap"
	"galachain-trade-bot-go/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Hardcoded last-resort USD prices per volatile asset. Used only when every
// live source is unavailable.
var fallbackUSD = map[string]decimal.Decimal{
	models.SymbolGala:  decimal.RequireFromString("0.017"),
	models.SymbolGweth: decimal.RequireFromString("2500"),
}

// unitQuoteFeeTier is the known-liquid pool used for 1-unit valuation quotes.
const unitQuoteFeeTier = gswap.FeeTier10000

// Snapshot is a one-shot mapping from asset symbol to USD unit price. It is
// rebuilt for every PnL computation and never cached across calls.
type Snapshot map[string]decimal.Decimal

// Price returns the snapshot price for a symbol, accepting either a plain
// symbol or a class key.
func (s Snapshot) Price(token string) (decimal.Decimal, bool) {
	p, ok := s[models.NormalizeSymbol(token)]
	return p, ok
}

// referenceSource is the external price lookup the resolver consults for the
// primary volatile asset.
type referenceSource interface {
	GalaUSD(ctx context.Context) (decimal.Decimal, error)
}

// Resolver resolves USD unit prices from a layered set of sources:
// operator override, external reference, on-chain 1-unit quote, and a
// hardcoded constant. Stable-value assets are pinned at 1.0 with no lookup.
type Resolver struct {
	logger    *zap.Logger
	gateway   gswap.GatewayInterface
	reference referenceSource
	override  decimal.Decimal
}

// NewResolver creates a price resolver. reference may be nil to disable the
// external source entirely.
func NewResolver(cfg *config.Pricing, gateway gswap.GatewayInterface, reference referenceSource, logger *zap.Logger) *Resolver {
	var override decimal.Decimal
	if cfg != nil && cfg.GalaUSDOverride > 0 {
		override = decimal.NewFromFloat(cfg.GalaUSDOverride)
	}
	return &Resolver{
		logger:    logger,
		gateway:   gateway,
		reference: reference,
		override:  override,
	}
}

// Resolve builds a full snapshot for all supported symbols. It never fails:
// every symbol resolves to a positive value, degrading source by source.
func (r *Resolver) Resolve(ctx context.Context) Snapshot {
	snap := Snapshot{
		models.SymbolGusdc: decimal.NewFromInt(1),
		models.SymbolGusdt: decimal.NewFromInt(1),
	}
	snap[models.SymbolGala] = r.resolveGala(ctx)
	snap[models.SymbolGweth] = r.resolveVolatile(ctx, models.SymbolGweth)
	return snap
}

// resolveGala walks the full source chain for the primary volatile asset.
func (r *Resolver) resolveGala(ctx context.Context) decimal.Decimal {
	if r.override.IsPositive() {
		return r.override
	}

	if r.reference != nil {
		price, err := r.reference.GalaUSD(ctx)
		if err == nil && price.IsPositive() {
			return price
		}
		if err != nil {
			r.logger.Warn("Reference price source unavailable", zap.Error(err))
		}
	}

	return r.resolveVolatile(ctx, models.SymbolGala)
}

// resolveVolatile prices a non-stable asset via an on-chain 1-unit quote
// against the stablecoin, falling back to the hardcoded constant.
func (r *Resolver) resolveVolatile(ctx context.Context, symbol string) decimal.Decimal {
	price, err := r.unitQuote(ctx, symbol)
	if err == nil {
		return price
	}
	r.logger.Warn("On-chain unit quote unavailable, using fallback constant",
		zap.String("symbol", symbol), zap.Error(err))

	if fallback, ok := fallbackUSD[symbol]; ok {
		return fallback
	}
	// A symbol with no table entry still must not resolve to zero.
	return decimal.RequireFromString("0.000001")
}

// unitQuote asks the gateway what one unit of symbol is worth in stablecoin.
func (r *Resolver) unitQuote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	quote, err := r.gateway.Quote(ctx, models.ClassKey(symbol), models.ClassKey(models.SymbolGusdc), "1", unitQuoteFeeTier)
	if err != nil {
		return decimal.Zero, err
	}
	price, err := decimal.NewFromString(quote.AmountOut)
	if err != nil {
		return decimal.Zero, fmt.Errorf("gateway returned unparseable amount %q: %w", quote.AmountOut, err)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("gateway returned non-positive unit price %s", price)
	}
	return price, nil
}

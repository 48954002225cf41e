package pricing

import (
	"context"
	"fmt"

	"galachain-trade-bot-go/internal/gswap"
	"galachain-trade-bot-go/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NotAvailable marks a PnL figure that could not be computed. Callers can
// distinguish "no profit" from "no data" by this sentinel.
const NotAvailable = "N/A"

// gasEstimateGala is the fixed per-swap gas estimate, in GALA.
var gasEstimateGala = decimal.NewFromInt(1)

// Result is the outcome of a profit-and-loss computation. Pnl is a signed
// USD currency string and PnlPercentage a signed percentage string; when USD
// pricing is unavailable Pnl carries the raw exchange ratio instead and
// PnlPercentage is NotAvailable.
type Result struct {
	Pnl           string
	PnlPercentage string
}

// Calculator values both legs of a swap in USD and produces absolute and
// percentage profit/loss. It never fails: any internal error degrades to
// NotAvailable figures.
type Calculator struct {
	logger   *zap.Logger
	gateway  gswap.GatewayInterface
	resolver *Resolver
}

// NewCalculator creates a PnL calculator on top of the price resolver.
func NewCalculator(gateway gswap.GatewayInterface, resolver *Resolver, logger *zap.Logger) *Calculator {
	return &Calculator{logger: logger, gateway: gateway, resolver: resolver}
}

// Compute values amountIn of tokenIn against amountOut of tokenOut. Tokens
// may be plain symbols or class keys. The computation runs on the live swap
// path and inside batch recomputation, so it must never panic outwards.
func (c *Calculator) Compute(ctx context.Context, amountIn, amountOut, tokenIn, tokenOut string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("PnL computation panicked", zap.Any("panic", r))
			result = Result{Pnl: NotAvailable, PnlPercentage: NotAvailable}
		}
	}()

	inSym := models.NormalizeSymbol(tokenIn)
	outSym := models.NormalizeSymbol(tokenOut)

	// A null swap has zero PnL by definition.
	if inSym == outSym {
		return Result{Pnl: formatUSD(decimal.Zero), PnlPercentage: formatPercent(decimal.Zero)}
	}

	in, errIn := decimal.NewFromString(amountIn)
	out, errOut := decimal.NewFromString(amountOut)
	if errIn != nil || errOut != nil {
		c.logger.Warn("Unparseable amounts in PnL computation",
			zap.String("amount_in", amountIn), zap.String("amount_out", amountOut))
		return Result{Pnl: NotAvailable, PnlPercentage: NotAvailable}
	}

	// One resolution pass per computation; the snapshot is used consistently
	// for leg fallback valuation and the gas estimate.
	snap := c.resolver.Resolve(ctx)

	inUSD, inOK := c.legUSD(ctx, snap, inSym, in)
	outUSD, outOK := c.legUSD(ctx, snap, outSym, out)

	if !inOK || !outOK {
		// No USD basis for one of the legs: report the exchange ratio so the
		// trade is still auditable.
		if in.IsPositive() {
			ratio := out.DivRound(in, 8)
			return Result{
				Pnl:           fmt.Sprintf("%s %s/%s", ratio, outSym, inSym),
				PnlPercentage: NotAvailable,
			}
		}
		return Result{Pnl: NotAvailable, PnlPercentage: NotAvailable}
	}

	gasUSD := gasEstimateGala.Mul(snap[models.SymbolGala])

	pnlUSD := outUSD.Sub(inUSD).Sub(gasUSD)
	pct := decimal.Zero
	if inUSD.IsPositive() {
		pct = pnlUSD.Div(inUSD).Mul(decimal.NewFromInt(100))
	}

	return Result{Pnl: formatUSD(pnlUSD), PnlPercentage: formatPercent(pct)}
}

// legUSD values one leg of a swap in USD. Stablecoin amounts are taken at
// face value; other assets are valued by an exact-amount quote against the
// stablecoin (AMM output is non-linear in size, so this beats scaling a unit
// price), with the snapshot unit price as fallback.
func (c *Calculator) legUSD(ctx context.Context, snap Snapshot, symbol string, amount decimal.Decimal) (decimal.Decimal, bool) {
	if models.IsStable(symbol) {
		return amount, true
	}
	if !amount.IsPositive() {
		return decimal.Zero, true
	}

	quote, err := c.gateway.Quote(ctx, models.ClassKey(symbol), models.ClassKey(models.SymbolGusdc), amount.String(), 0)
	if err == nil {
		if value, convErr := decimal.NewFromString(quote.AmountOut); convErr == nil && value.IsPositive() {
			return value, true
		}
	} else {
		c.logger.Debug("Exact-amount valuation failed, falling back to unit price",
			zap.String("symbol", symbol), zap.Error(err))
	}

	if unit, ok := snap[symbol]; ok && unit.IsPositive() {
		return amount.Mul(unit), true
	}
	return decimal.Zero, false
}

// formatUSD renders a signed currency string to 4 decimals. The sign is
// always explicit, including on non-negative values.
func formatUSD(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(4)
	}
	return "+$" + d.StringFixed(4)
}

// formatPercent renders a signed percentage string to 2 decimals.
func formatPercent(d decimal.Decimal) string {
	if d.IsNegative() {
		return d.StringFixed(2) + "%"
	}
	return "+" + d.StringFixed(2) + "%"
}

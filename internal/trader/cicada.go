package trader

import (
	"context"
	"sync"
	"time"

	"galachain-trade-bot-go/internal/config"
	"galachain-trade-bot-go/internal/gswap"
	"galachain-trade-bot-go/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// primeMinutes is the cycling wait sequence: the first eight primes, in
// minutes. The non-uniform base keeps the trade cadence from syncing up with
// anything periodic on the exchange side.
var primeMinutes = []time.Duration{
	2 * time.Minute, 3 * time.Minute, 5 * time.Minute, 7 * time.Minute,
	11 * time.Minute, 13 * time.Minute, 17 * time.Minute, 19 * time.Minute,
}

// largeTradeSize is the notional size above which slippage tolerance is
// widened automatically.
var largeTradeSize = decimal.NewFromInt(10000)

var oneHundred = decimal.NewFromInt(100)

// CicadaConfig configures the prime-interval scheduler strategy.
type CicadaConfig struct {
	TokenA            string
	TokenB            string
	SlippageTolerance float64 // percent
	SwapPercentage    float64 // percent of tokenIn balance per trade
	FeeTier           int     // preferred pool; zero probes the liquid tiers
	Intervals         []time.Duration
}

// defaultCicadaConfig builds the per-kind defaults, overlaid with the file
// configuration's trading section.
func defaultCicadaConfig(cfg *config.Config) CicadaConfig {
	c := CicadaConfig{
		TokenA:            models.SymbolGala,
		TokenB:            models.SymbolGusdc,
		SlippageTolerance: 0.5,
		SwapPercentage:    25,
		Intervals:         primeMinutes,
	}
	if cfg == nil {
		return c
	}
	t := cfg.Trading
	if t.TokenA != "" {
		c.TokenA = models.NormalizeSymbol(t.TokenA)
	}
	if t.TokenB != "" {
		c.TokenB = models.NormalizeSymbol(t.TokenB)
	}
	if t.SlippageTolerance > 0 {
		c.SlippageTolerance = t.SlippageTolerance
	}
	if t.SwapPercentage > 0 {
		c.SwapPercentage = t.SwapPercentage
	}
	if t.FeeTier > 0 {
		c.FeeTier = t.FeeTier
	}
	return c
}

// overlay merges caller-supplied fields over the defaults; zero values keep
// the default.
func (c CicadaConfig) overlay(o *CicadaConfig) CicadaConfig {
	if o == nil {
		return c
	}
	if o.TokenA != "" {
		c.TokenA = models.NormalizeSymbol(o.TokenA)
	}
	if o.TokenB != "" {
		c.TokenB = models.NormalizeSymbol(o.TokenB)
	}
	if o.SlippageTolerance > 0 {
		c.SlippageTolerance = o.SlippageTolerance
	}
	if o.SwapPercentage > 0 {
		c.SwapPercentage = o.SwapPercentage
	}
	if o.FeeTier > 0 {
		c.FeeTier = o.FeeTier
	}
	if len(o.Intervals) > 0 {
		c.Intervals = o.Intervals
	}
	return c
}

// CicadaStrategy alternates swap direction between TokenA and TokenB over the
// cycling prime-interval sequence. The schedule advances unconditionally:
// success, failure, and skip all move the index and flip direction, so one
// bad interval can never stall the cycle.
type CicadaStrategy struct {
	sctx   StrategyContext
	cfg    CicadaConfig
	logger *zap.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu            sync.Mutex
	intervalIndex int
	buyingSideB   bool
}

// NewCicadaStrategy builds the strategy with merged configuration.
func NewCicadaStrategy(sctx StrategyContext, ov *CicadaConfig) *CicadaStrategy {
	cfg := defaultCicadaConfig(sctx.Cfg).overlay(ov)
	return &CicadaStrategy{
		sctx:        sctx,
		cfg:         cfg,
		logger:      sctx.Logger.With(zap.String("strategy", string(KindCicada))),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		buyingSideB: true,
	}
}

func (s *CicadaStrategy) Name() string { return string(KindCicada) }

// Start launches the scheduler loop. The very first interval executes
// immediately; every subsequent one waits its slot in the prime sequence.
func (s *CicadaStrategy) Start(ctx context.Context) error {
	s.logger.Info("Starting cicada scheduler",
		zap.String("token_a", s.cfg.TokenA),
		zap.String("token_b", s.cfg.TokenB),
		zap.Int("intervals", len(s.cfg.Intervals)),
	)
	go s.loop(ctx)
	return nil
}

// Stop cancels the pending timer. An execution already in flight completes
// and its outcome is still recorded.
func (s *CicadaStrategy) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Done is closed when the loop has fully exited.
func (s *CicadaStrategy) Done() <-chan struct{} { return s.done }

// State reports the current interval index and direction.
func (s *CicadaStrategy) State() (intervalIndex int, buyingSideB bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intervalIndex, s.buyingSideB
}

func (s *CicadaStrategy) loop(ctx context.Context) {
	defer close(s.done)

	var wait time.Duration // zero: interval 0 fires without waiting
	for {
		select {
		case <-s.stop:
			s.logger.Info("Cicada scheduler stopped")
			return
		case <-ctx.Done():
			return
		case <-s.sctx.Clock.After(wait):
		}
		// A stop issued while the timer was pending wins over the fire.
		select {
		case <-s.stop:
			s.logger.Info("Cicada scheduler stopped")
			return
		default:
		}

		s.executeInterval(ctx)

		s.mu.Lock()
		wait = s.cfg.Intervals[s.intervalIndex]
		s.intervalIndex = (s.intervalIndex + 1) % len(s.cfg.Intervals)
		s.buyingSideB = !s.buyingSideB
		s.mu.Unlock()
	}
}

// executeInterval performs one trade attempt in the current direction.
// Failures and skips are recorded and swallowed; only the schedule state
// machine decides what happens next.
func (s *CicadaStrategy) executeInterval(ctx context.Context) {
	s.mu.Lock()
	index := s.intervalIndex
	buyingB := s.buyingSideB
	s.mu.Unlock()

	tokenIn, tokenOut := s.cfg.TokenA, s.cfg.TokenB
	if !buyingB {
		tokenIn, tokenOut = tokenOut, tokenIn
	}

	l := s.logger.With(
		zap.Int("interval", index),
		zap.String("token_in", tokenIn),
		zap.String("token_out", tokenOut),
	)

	balance, err := decimal.NewFromString(s.sctx.Gateway.BalanceOf(ctx, models.ClassKey(tokenIn)))
	if err != nil || !balance.IsPositive() {
		l.Warn("No balance to trade, skipping interval", zap.String("balance", balance.String()))
		s.recordSkip(tokenIn, tokenOut, "insufficient balance")
		return
	}

	size := balance.Mul(decimal.NewFromFloat(s.cfg.SwapPercentage)).Div(oneHundred).RoundDown(8)
	if !size.IsPositive() {
		l.Warn("Trade size rounded to zero, skipping interval")
		s.recordSkip(tokenIn, tokenOut, "trade size too small")
		return
	}

	slippage := s.effectiveSlippage(size)
	quote := s.probeQuote(ctx, l, tokenIn, tokenOut, size)
	if quote == nil {
		l.Warn("No usable quote on any fee tier, skipping interval")
		s.recordSkip(tokenIn, tokenOut, "no usable quote")
		return
	}

	amountOut, err := decimal.NewFromString(quote.AmountOut)
	if err != nil {
		l.Warn("Unparseable quote output, skipping interval", zap.String("amount_out", quote.AmountOut))
		s.recordSkip(tokenIn, tokenOut, "bad quote")
		return
	}
	minOut := amountOut.Mul(decimal.NewFromInt(1).Sub(decimal.NewFromFloat(slippage).Div(oneHundred))).RoundDown(8)

	l.Info("Executing swap",
		zap.String("amount_in", size.String()),
		zap.String("quoted_out", amountOut.String()),
		zap.String("min_out", minOut.String()),
		zap.Int("fee_tier", quote.FeeTier),
		zap.Float64("slippage_pct", slippage),
	)

	id := s.sctx.Ledger.Append(models.TransactionRecord{
		Type:        models.TypeSwap,
		TokenIn:     tokenIn,
		TokenOut:    tokenOut,
		AmountIn:    size.String(),
		AmountOut:   amountOut.String(),
		FeeTier:     quote.FeeTier,
		PriceImpact: quote.PriceImpact,
		Strategy:    s.Name(),
	})

	result := ExecutionResult{
		Strategy:  s.Name(),
		Timestamp: s.sctx.Clock.Now(),
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		AmountIn:  size.String(),
		AmountOut: amountOut.String(),
	}

	if s.sctx.Cfg != nil && s.sctx.Cfg.Trading.DryRun {
		l.Warn("Dry run enabled, no swap submitted")
		s.sctx.Ledger.UpdateStatus(id, models.StatusCompleted, "dry-run")
		result.Success = true
		result.TransactionHash = "dry-run"
		s.sctx.Results.Add(result)
		return
	}

	pending, err := s.sctx.Gateway.Swap(ctx, gswap.SwapRequest{
		TokenIn:          models.ClassKey(tokenIn),
		TokenOut:         models.ClassKey(tokenOut),
		FeeTier:          quote.FeeTier,
		ExactIn:          size.String(),
		AmountOutMinimum: minOut.String(),
	})
	if err != nil {
		l.Error("Swap submission failed", zap.Error(err))
		s.sctx.Ledger.UpdateStatus(id, models.StatusFailed, "")
		result.Error = err.Error()
		s.sctx.Results.Add(result)
		return
	}

	receipt, err := pending.Wait(ctx)
	if err != nil {
		l.Error("Swap failed to settle", zap.Error(err))
		s.sctx.Ledger.UpdateStatus(id, models.StatusFailed, "")
		result.Error = err.Error()
		s.sctx.Results.Add(result)
		return
	}

	l.Info("Swap settled", zap.String("transaction_hash", receipt.TransactionHash))
	s.sctx.Ledger.UpdateStatus(id, models.StatusCompleted, receipt.TransactionHash)
	s.sctx.Ledger.Recalculate(ctx, id)
	result.Success = true
	result.TransactionHash = receipt.TransactionHash
	s.sctx.Results.Add(result)
}

// effectiveSlippage widens the configured tolerance for large trades, whose
// execution price drifts further from the quote.
func (s *CicadaStrategy) effectiveSlippage(size decimal.Decimal) float64 {
	if size.GreaterThan(largeTradeSize) {
		return s.cfg.SlippageTolerance * 2
	}
	return s.cfg.SlippageTolerance
}

// probeQuote tries the preferred tier first, then the known-liquid tiers in
// order, returning the first quote with positive output.
func (s *CicadaStrategy) probeQuote(ctx context.Context, l *zap.Logger, tokenIn, tokenOut string, size decimal.Decimal) *gswap.Quote {
	tiers := gswap.LiquidFeeTiers
	if s.cfg.FeeTier > 0 {
		tiers = append([]int{s.cfg.FeeTier}, tiers...)
	}

	seen := make(map[int]bool, len(tiers))
	for _, tier := range tiers {
		if seen[tier] {
			continue
		}
		seen[tier] = true

		quote, err := s.sctx.Gateway.Quote(ctx, models.ClassKey(tokenIn), models.ClassKey(tokenOut), size.String(), tier)
		if err != nil {
			l.Debug("Quote attempt failed", zap.Int("fee_tier", tier), zap.Error(err))
			continue
		}
		out, err := decimal.NewFromString(quote.AmountOut)
		if err != nil || !out.IsPositive() {
			l.Debug("Quote returned no output", zap.Int("fee_tier", tier))
			continue
		}
		if quote.FeeTier == 0 {
			quote.FeeTier = tier
		}
		return quote
	}
	return nil
}

// recordSkip notes a skipped interval in the results buffer. Skips create no
// ledger entry: nothing was submitted.
func (s *CicadaStrategy) recordSkip(tokenIn, tokenOut, reason string) {
	s.sctx.Results.Add(ExecutionResult{
		Strategy:  s.Name(),
		Timestamp: s.sctx.Clock.Now(),
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		Skipped:   true,
		Error:     reason,
	})
}

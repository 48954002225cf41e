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

// placeholderProfit is the fixed estimate recorded with flagged
// opportunities. Cross-tier execution economics are not modeled here; the
// figure only marks that a spread was observed.
const placeholderProfit = "+$0.0100"

// ArbitrageConfig configures the cross-fee-tier spread probe.
type ArbitrageConfig struct {
	TokenA           string
	TokenB           string
	ProbeAmount      string
	Interval         time.Duration
	MinSpreadPercent float64
}

func defaultArbitrageConfig(cfg *config.Config) ArbitrageConfig {
	c := ArbitrageConfig{
		TokenA:           models.SymbolGala,
		TokenB:           models.SymbolGusdc,
		ProbeAmount:      "100",
		Interval:         5 * time.Minute,
		MinSpreadPercent: 1.0,
	}
	if cfg != nil {
		if cfg.Trading.TokenA != "" {
			c.TokenA = models.NormalizeSymbol(cfg.Trading.TokenA)
		}
		if cfg.Trading.TokenB != "" {
			c.TokenB = models.NormalizeSymbol(cfg.Trading.TokenB)
		}
	}
	return c
}

func (c ArbitrageConfig) overlay(o *ArbitrageConfig) ArbitrageConfig {
	if o == nil {
		return c
	}
	if o.TokenA != "" {
		c.TokenA = models.NormalizeSymbol(o.TokenA)
	}
	if o.TokenB != "" {
		c.TokenB = models.NormalizeSymbol(o.TokenB)
	}
	if o.ProbeAmount != "" {
		c.ProbeAmount = o.ProbeAmount
	}
	if o.Interval > 0 {
		c.Interval = o.Interval
	}
	if o.MinSpreadPercent > 0 {
		c.MinSpreadPercent = o.MinSpreadPercent
	}
	return c
}

// ArbitrageStrategy periodically quotes the configured pair on every fee tier
// and records a ledger entry when the best and worst tiers diverge past the
// configured spread. It runs in a named slot alongside the exclusive
// strategy.
type ArbitrageStrategy struct {
	sctx   StrategyContext
	cfg    ArbitrageConfig
	logger *zap.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewArbitrageStrategy builds the strategy with merged configuration.
func NewArbitrageStrategy(sctx StrategyContext, ov *ArbitrageConfig) *ArbitrageStrategy {
	return &ArbitrageStrategy{
		sctx:   sctx,
		cfg:    defaultArbitrageConfig(sctx.Cfg).overlay(ov),
		logger: sctx.Logger.With(zap.String("strategy", string(KindArbitrage))),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (s *ArbitrageStrategy) Name() string { return string(KindArbitrage) }

func (s *ArbitrageStrategy) Start(ctx context.Context) error {
	s.logger.Info("Starting arbitrage probe",
		zap.String("pair", s.cfg.TokenA+"/"+s.cfg.TokenB),
		zap.Duration("interval", s.cfg.Interval),
	)
	go s.loop(ctx)
	return nil
}

func (s *ArbitrageStrategy) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Done is closed when the loop has fully exited.
func (s *ArbitrageStrategy) Done() <-chan struct{} { return s.done }

func (s *ArbitrageStrategy) loop(ctx context.Context) {
	defer close(s.done)

	var wait time.Duration // first probe fires immediately
	for {
		select {
		case <-s.stop:
			s.logger.Info("Arbitrage probe stopped")
			return
		case <-ctx.Done():
			return
		case <-s.sctx.Clock.After(wait):
		}
		select {
		case <-s.stop:
			s.logger.Info("Arbitrage probe stopped")
			return
		default:
		}

		s.probe(ctx)
		wait = s.cfg.Interval
	}
}

// tierQuote pairs a fee tier with its quoted output.
type tierQuote struct {
	tier int
	out  decimal.Decimal
}

// probe quotes the pair at every liquid tier and flags a spread between the
// best and worst usable outputs.
func (s *ArbitrageStrategy) probe(ctx context.Context) {
	tokenIn := models.ClassKey(s.cfg.TokenA)
	tokenOut := models.ClassKey(s.cfg.TokenB)

	var quotes []tierQuote
	for _, tier := range gswap.LiquidFeeTiers {
		quote, err := s.sctx.Gateway.Quote(ctx, tokenIn, tokenOut, s.cfg.ProbeAmount, tier)
		if err != nil {
			s.logger.Debug("Tier quote failed", zap.Int("fee_tier", tier), zap.Error(err))
			continue
		}
		out, err := decimal.NewFromString(quote.AmountOut)
		if err != nil || !out.IsPositive() {
			continue
		}
		quotes = append(quotes, tierQuote{tier: tier, out: out})
	}

	if len(quotes) < 2 {
		s.logger.Debug("Not enough usable tiers for a spread", zap.Int("tiers", len(quotes)))
		return
	}

	best, worst := quotes[0], quotes[0]
	for _, q := range quotes[1:] {
		if q.out.GreaterThan(best.out) {
			best = q
		}
		if q.out.LessThan(worst.out) {
			worst = q
		}
	}

	spread := best.out.Sub(worst.out).Div(worst.out).Mul(oneHundred)
	if spread.LessThan(decimal.NewFromFloat(s.cfg.MinSpreadPercent)) {
		return
	}

	s.logger.Info("Cross-tier spread detected",
		zap.Int("best_tier", best.tier),
		zap.Int("worst_tier", worst.tier),
		zap.String("spread_pct", spread.StringFixed(2)),
	)

	s.sctx.Ledger.Append(models.TransactionRecord{
		Type:      models.TypeArbitrage,
		TokenIn:   s.cfg.TokenA,
		TokenOut:  s.cfg.TokenB,
		AmountIn:  s.cfg.ProbeAmount,
		AmountOut: best.out.String(),
		FeeTier:   best.tier,
		Status:    models.StatusCompleted,
		Strategy:  s.Name(),
		Profit:    placeholderProfit,
	})

	s.sctx.Results.Add(ExecutionResult{
		Strategy:  s.Name(),
		Timestamp: s.sctx.Clock.Now(),
		TokenIn:   s.cfg.TokenA,
		TokenOut:  s.cfg.TokenB,
		AmountIn:  s.cfg.ProbeAmount,
		AmountOut: best.out.String(),
		Success:   true,
	})
}

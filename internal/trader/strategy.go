package trader

import (
	"context"
	"fmt"

	"galachain-trade-bot-go/internal/config"
	"galachain-trade-bot-go/internal/gswap"
	"galachain-trade-bot-go/internal/ledger"
	"go.uber.org/zap"
)

// Kind identifies a strategy in the closed registry.
type Kind string

const (
	KindCicada    Kind = "cicada"
	KindArbitrage Kind = "arbitrage"
)

// ParseKind maps a configured strategy name onto the closed set of kinds.
func ParseKind(name string) (Kind, error) {
	switch Kind(name) {
	case KindCicada, KindArbitrage:
		return Kind(name), nil
	}
	return "", fmt.Errorf("unknown strategy %q", name)
}

// Strategy is a runnable trading strategy. Start launches the strategy's own
// loop and returns; Stop halts the loop before its next execution without
// interrupting an execution already in flight.
type Strategy interface {
	Name() string
	Start(ctx context.Context) error
	Stop()
}

// StrategyContext provides a strategy with access to the core components.
type StrategyContext struct {
	Logger  *zap.Logger
	Cfg     *config.Config
	Gateway gswap.GatewayInterface
	Ledger  *ledger.Ledger
	Results *ResultsBuffer
	Clock   Clock
}

// Overrides carries optional caller-supplied configuration per strategy
// kind. A nil section means the kind's defaults merged with file
// configuration.
type Overrides struct {
	Cicada    *CicadaConfig
	Arbitrage *ArbitrageConfig
}

// factory couples a kind's slot model to its constructor.
type factory struct {
	exclusive bool
	build     func(sctx StrategyContext, ov Overrides) Strategy
}

// registry is the closed constructor table; adding a strategy means adding a
// Kind constant and a row here.
var registry = map[Kind]factory{
	KindCicada: {
		exclusive: true,
		build: func(sctx StrategyContext, ov Overrides) Strategy {
			return NewCicadaStrategy(sctx, ov.Cicada)
		},
	},
	KindArbitrage: {
		exclusive: false,
		build: func(sctx StrategyContext, ov Overrides) Strategy {
			return NewArbitrageStrategy(sctx, ov.Arbitrage)
		},
	},
}

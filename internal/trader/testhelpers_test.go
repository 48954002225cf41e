package trader

import (
	"context"
	"sync"
	"time"

	"galachain-trade-bot-go/internal/gswap"
	"galachain-trade-bot-go/internal/pricing"
)

// fakeClock is a virtual clock driven by the test. Zero-duration waits fire
// immediately; everything else fires when the test says so.
type fakeClock struct {
	mu    sync.Mutex
	waits []time.Duration
	chans []chan time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{} }

func (c *fakeClock) Now() time.Time { return time.Unix(1700000000, 0) }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	if d == 0 {
		ch <- c.Now()
	}
	c.waits = append(c.waits, d)
	c.chans = append(c.chans, ch)
	return ch
}

func (c *fakeClock) waitCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waits)
}

func (c *fakeClock) waitAt(i int) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waits[i]
}

// fire releases the i-th requested wait.
func (c *fakeClock) fire(i int) {
	c.mu.Lock()
	ch := c.chans[i]
	c.mu.Unlock()
	ch <- c.Now()
}

// stubPending is a canned settled transaction.
type stubPending struct {
	hash string
	err  error
}

func (p stubPending) Wait(ctx context.Context) (*gswap.SwapReceipt, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &gswap.SwapReceipt{TransactionHash: p.hash}, nil
}

// stubGateway is a deterministic gateway for scheduler tests.
type stubGateway struct {
	mu       sync.Mutex
	balances map[string]string // class key -> balance
	quoteOut string
	tierOuts map[int]string // per-tier output overrides
	quoteErr error
	swapErr  error
	waitErr  error
	swapHash string

	quoteCalls []gswap.SwapRequest
	swapCalls  []gswap.SwapRequest
}

func newStubGateway() *stubGateway {
	return &stubGateway{balances: make(map[string]string), swapHash: "0xfeed"}
}

func (g *stubGateway) GetStatus(ctx context.Context) error { return nil }

func (g *stubGateway) Quote(ctx context.Context, tokenIn, tokenOut, amountIn string, feeTier int) (*gswap.Quote, error) {
	g.mu.Lock()
	g.quoteCalls = append(g.quoteCalls, gswap.SwapRequest{TokenIn: tokenIn, TokenOut: tokenOut, ExactIn: amountIn, FeeTier: feeTier})
	out, err := g.quoteOut, g.quoteErr
	if tierOut, ok := g.tierOuts[feeTier]; ok {
		out = tierOut
	}
	g.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &gswap.Quote{AmountIn: amountIn, AmountOut: out, FeeTier: feeTier, PriceImpact: "0.01"}, nil
}

func (g *stubGateway) Swap(ctx context.Context, req gswap.SwapRequest) (gswap.PendingTx, error) {
	g.mu.Lock()
	g.swapCalls = append(g.swapCalls, req)
	err, waitErr, hash := g.swapErr, g.waitErr, g.swapHash
	g.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return stubPending{hash: hash, err: waitErr}, nil
}

func (g *stubGateway) BalanceOf(ctx context.Context, tokenKey string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if b, ok := g.balances[tokenKey]; ok {
		return b
	}
	return "0"
}

func (g *stubGateway) swapCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.swapCalls)
}

// stubComputer returns a fixed PnL result.
type stubComputer struct{}

func (stubComputer) Compute(ctx context.Context, amountIn, amountOut, tokenIn, tokenOut string) pricing.Result {
	return pricing.Result{Pnl: "+$0.0001", PnlPercentage: "+0.10%"}
}

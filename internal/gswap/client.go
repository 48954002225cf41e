package gswap

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"galachain-trade-bot-go/internal/config"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Fee tiers supported by the exchange, in hundredths of a basis point.
const (
	FeeTier500   = 500   // 0.05%
	FeeTier3000  = 3000  // 0.30%
	FeeTier10000 = 10000 // 1.00%
)

// LiquidFeeTiers is the probe order for quote attempts, most liquid first.
var LiquidFeeTiers = []int{FeeTier10000, FeeTier3000, FeeTier500}

// Quote is the gateway's answer to a swap quote request. All numeric fields
// are decimal strings.
type Quote struct {
	AmountIn     string `json:"amount_in"`
	AmountOut    string `json:"amount_out"`
	PriceImpact  string `json:"price_impact"`
	FeeTier      int    `json:"fee_tier"`
	CurrentPrice string `json:"current_price"`
	NewPrice     string `json:"new_price"`
}

// SwapRequest carries everything the gateway needs to submit a swap.
type SwapRequest struct {
	TokenIn          string
	TokenOut         string
	FeeTier          int
	ExactIn          string
	AmountOutMinimum string
	WalletAddress    string
}

// SwapReceipt is the terminal result of a submitted swap.
type SwapReceipt struct {
	TransactionHash string `json:"transaction_hash"`
}

// PendingTx is a submitted swap that has not yet settled.
type PendingTx interface {
	// Wait blocks until the transaction settles or ctx is done.
	Wait(ctx context.Context) (*SwapReceipt, error)
}

// GatewayInterface defines the gateway operations the core consumes: quote
// provider, swap executor, and balance provider.
type GatewayInterface interface {
	GetStatus(ctx context.Context) error
	Quote(ctx context.Context, tokenIn, tokenOut, amountIn string, feeTier int) (*Quote, error)
	Swap(ctx context.Context, req SwapRequest) (PendingTx, error)
	BalanceOf(ctx context.Context, tokenKey string) string
}

// Client is a REST client for the GalaChain DEX gateway.
// It implements GatewayInterface.
type Client struct {
	client       *resty.Client
	wallet       string
	logger       *zap.Logger
	limiter      *rate.Limiter
	pollInterval time.Duration
}

// ensure Client implements the interface
var _ GatewayInterface = (*Client)(nil)

// NewClient creates a new DEX gateway client.
func NewClient(cfg *config.Gateway, logger *zap.Logger) *Client {
	client := resty.New().SetBaseURL(cfg.BaseURL)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:       client,
		wallet:       cfg.WalletAddress,
		logger:       logger,
		limiter:      limiter,
		pollInterval: 2 * time.Second,
	}
}

// envelope is the gateway's standard response wrapper.
type envelope[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.SetContext(ctx).Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil && err == nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

// GetStatus probes gateway connectivity. Useful at startup before any
// strategy is scheduled.
func (c *Client) GetStatus(ctx context.Context) error {
	req := c.client.R().SetResult(&envelope[map[string]any]{})
	if _, err := c.doRequest(ctx, "GET", "/v1/status", req); err != nil {
		return fmt.Errorf("gateway status check failed: %w", err)
	}
	return nil
}

// Quote asks the gateway to price a swap of amountIn tokenIn for tokenOut.
// A feeTier of zero lets the gateway pick the pool.
func (c *Client) Quote(ctx context.Context, tokenIn, tokenOut, amountIn string, feeTier int) (*Quote, error) {
	req := c.client.R().
		SetQueryParams(map[string]string{
			"tokenIn":  tokenIn,
			"tokenOut": tokenOut,
			"amountIn": amountIn,
		}).
		SetResult(&envelope[Quote]{})
	if feeTier > 0 {
		req.SetQueryParam("fee", strconv.Itoa(feeTier))
	}

	resp, err := c.doRequest(ctx, "GET", "/v1/trade/quote", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote %s->%s: %w", tokenIn, tokenOut, err)
	}

	result := resp.Result().(*envelope[Quote])
	quote := result.Data
	if quote.AmountIn == "" {
		quote.AmountIn = amountIn
	}
	return &quote, nil
}

// swapPayload is the wire form of a swap submission.
type swapPayload struct {
	TokenIn          string `json:"tokenIn"`
	TokenOut         string `json:"tokenOut"`
	Fee              int    `json:"fee"`
	AmountIn         string `json:"amountIn"`
	AmountOutMinimum string `json:"amountOutMinimum"`
	WalletAddress    string `json:"walletAddress"`
}

type swapSubmitted struct {
	TransactionID string `json:"transactionId"`
}

// Swap submits a swap transaction and returns a handle the caller can wait on.
func (c *Client) Swap(ctx context.Context, swapReq SwapRequest) (PendingTx, error) {
	wallet := swapReq.WalletAddress
	if wallet == "" {
		wallet = c.wallet
	}

	req := c.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(swapPayload{
			TokenIn:          swapReq.TokenIn,
			TokenOut:         swapReq.TokenOut,
			Fee:              swapReq.FeeTier,
			AmountIn:         swapReq.ExactIn,
			AmountOutMinimum: swapReq.AmountOutMinimum,
			WalletAddress:    wallet,
		}).
		SetResult(&envelope[swapSubmitted]{})

	resp, err := c.doRequest(ctx, "POST", "/v1/trade/swap", req)
	if err != nil {
		c.logger.Error("Failed to submit swap",
			zap.String("token_in", swapReq.TokenIn),
			zap.String("token_out", swapReq.TokenOut),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to submit swap: %w", err)
	}

	result := resp.Result().(*envelope[swapSubmitted])
	if result.Data.TransactionID == "" {
		return nil, fmt.Errorf("gateway accepted swap but returned no transaction id")
	}
	c.logger.Info("Swap submitted", zap.String("transaction_id", result.Data.TransactionID))

	return &pendingTx{client: c, txID: result.Data.TransactionID}, nil
}

type txStatus struct {
	Status          string `json:"status"`
	TransactionHash string `json:"transactionHash"`
	Error           string `json:"error,omitempty"`
}

// pendingTx polls the gateway for a submitted transaction's terminal state.
type pendingTx struct {
	client *Client
	txID   string
}

func (p *pendingTx) Wait(ctx context.Context) (*SwapReceipt, error) {
	for {
		req := p.client.client.R().
			SetQueryParam("transactionId", p.txID).
			SetResult(&envelope[txStatus]{})

		resp, err := p.client.doRequest(ctx, "GET", "/v1/trade/transaction-status", req)
		if err != nil {
			return nil, fmt.Errorf("failed to poll transaction %s: %w", p.txID, err)
		}

		status := resp.Result().(*envelope[txStatus]).Data
		switch status.Status {
		case "PROCESSED", "CONFIRMED":
			hash := status.TransactionHash
			if hash == "" {
				hash = p.txID
			}
			return &SwapReceipt{TransactionHash: hash}, nil
		case "FAILED", "REJECTED":
			return nil, fmt.Errorf("transaction %s failed: %s", p.txID, status.Error)
		}

		select {
		case <-time.After(p.client.pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

type balanceData struct {
	Quantity string `json:"quantity"`
}

// BalanceOf returns the wallet's balance for a token class key as a decimal
// string. It never fails: any error degrades to "0" so callers can treat a
// broken lookup as an empty wallet.
func (c *Client) BalanceOf(ctx context.Context, tokenKey string) string {
	req := c.client.R().
		SetQueryParams(map[string]string{
			"owner": c.wallet,
			"token": tokenKey,
		}).
		SetResult(&envelope[balanceData]{})

	resp, err := c.doRequest(ctx, "GET", "/v1/trade/balance", req)
	if err != nil {
		c.logger.Warn("Balance lookup failed, treating as zero",
			zap.String("token", tokenKey), zap.Error(err))
		return "0"
	}

	quantity := resp.Result().(*envelope[balanceData]).Data.Quantity
	if quantity == "" {
		return "0"
	}
	return quantity
}

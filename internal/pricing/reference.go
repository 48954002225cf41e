package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const referenceMaxAttempts = 3

// ReferenceClient fetches the external USD reference price for GALA.
type ReferenceClient struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

// NewReferenceClient creates a reference price client with a short request
// timeout; reference pricing is best-effort and must not stall a PnL pass.
func NewReferenceClient(url string, timeout time.Duration, logger *zap.Logger) *ReferenceClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ReferenceClient{
		client: resty.New().SetTimeout(timeout),
		url:    url,
		logger: logger,
	}
}

// galaUSDResponse matches the CoinGecko simple-price payload.
type galaUSDResponse struct {
	Gala struct {
		USD float64 `json:"usd"`
	} `json:"gala"`
}

// GalaUSD returns the reference GALA/USD price. Transient failures are
// retried with exponential backoff before giving up.
func (c *ReferenceClient) GalaUSD(ctx context.Context) (decimal.Decimal, error) {
	backoffCfg := backoff.NewExponentialBackOff()
	backoffCfg.InitialInterval = 500 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt < referenceMaxAttempts; attempt++ {
		if attempt > 0 {
			sleep := backoffCfg.NextBackOff()
			select {
			case <-time.After(sleep):
			case <-ctx.Done():
				return decimal.Zero, ctx.Err()
			}
		}

		var result galaUSDResponse
		resp, err := c.client.R().
			SetContext(ctx).
			SetResult(&result).
			Get(c.url)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.IsError() {
			lastErr = fmt.Errorf("reference price request failed with status %s", resp.Status())
			continue
		}

		price := decimal.NewFromFloat(result.Gala.USD)
		if !price.IsPositive() {
			return decimal.Zero, fmt.Errorf("reference source returned non-positive price %s", price)
		}
		return price, nil
	}

	return decimal.Zero, fmt.Errorf("reference price unavailable after %d attempts: %w", referenceMaxAttempts, lastErr)
}

package models

// TransactionType classifies what produced a ledger record.
type TransactionType string

const (
	TypeSwap      TransactionType = "swap"
	TypeArbitrage TransactionType = "arbitrage"
	TypeQuote     TransactionType = "quote"
)

// TransactionStatus is the lifecycle state of a recorded transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// TransactionRecord is one entry in the transaction ledger. Amounts are
// decimal strings; the ledger assigns ID and Timestamp on append and owns
// every mutation afterwards.
type TransactionRecord struct {
	ID              string            `json:"id"`
	Timestamp       int64             `json:"timestamp"` // unix milliseconds
	Type            TransactionType   `json:"type"`
	TokenIn         string            `json:"token_in"`
	TokenOut        string            `json:"token_out"`
	AmountIn        string            `json:"amount_in"`
	AmountOut       string            `json:"amount_out"`
	TransactionHash string            `json:"transaction_hash,omitempty"`
	FeeTier         int               `json:"fee_tier,omitempty"`
	PriceImpact     string            `json:"price_impact,omitempty"`
	Status          TransactionStatus `json:"status"`
	Strategy        string            `json:"strategy,omitempty"`
	Profit          string            `json:"profit,omitempty"`
	Pnl             string            `json:"pnl,omitempty"`
	PnlPercentage   string            `json:"pnl_percentage,omitempty"`
}

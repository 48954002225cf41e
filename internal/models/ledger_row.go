package models

import "gorm.io/gorm"

// LedgerRow is the sqlite representation of a TransactionRecord for the
// gorm-backed ledger store. Position preserves the ledger's newest-first
// ordering across a reload.
type LedgerRow struct {
	gorm.Model
	RecordID        string `gorm:"uniqueIndex" json:"id"`
	Position        int    `gorm:"index" json:"-"`
	Timestamp       int64  `json:"timestamp"`
	Type            string `json:"type"`
	TokenIn         string `json:"token_in"`
	TokenOut        string `json:"token_out"`
	AmountIn        string `json:"amount_in"`
	AmountOut       string `json:"amount_out"`
	TransactionHash string `json:"transaction_hash,omitempty"`
	FeeTier         int    `json:"fee_tier,omitempty"`
	PriceImpact     string `json:"price_impact,omitempty"`
	Status          string `json:"status"`
	Strategy        string `json:"strategy,omitempty"`
	Profit          string `json:"profit,omitempty"`
	Pnl             string `json:"pnl,omitempty"`
	PnlPercentage   string `json:"pnl_percentage,omitempty"`
}

// ToRecord converts a stored row back to the ledger's in-memory form.
func (r *LedgerRow) ToRecord() TransactionRecord {
	return TransactionRecord{
		ID:              r.RecordID,
		Timestamp:       r.Timestamp,
		Type:            TransactionType(r.Type),
		TokenIn:         r.TokenIn,
		TokenOut:        r.TokenOut,
		AmountIn:        r.AmountIn,
		AmountOut:       r.AmountOut,
		TransactionHash: r.TransactionHash,
		FeeTier:         r.FeeTier,
		PriceImpact:     r.PriceImpact,
		Status:          TransactionStatus(r.Status),
		Strategy:        r.Strategy,
		Profit:          r.Profit,
		Pnl:             r.Pnl,
		PnlPercentage:   r.PnlPercentage,
	}
}

// RowFromRecord builds a LedgerRow for persistence at the given position.
func RowFromRecord(rec TransactionRecord, position int) LedgerRow {
	return LedgerRow{
		RecordID:        rec.ID,
		Position:        position,
		Timestamp:       rec.Timestamp,
		Type:            string(rec.Type),
		TokenIn:         rec.TokenIn,
		TokenOut:        rec.TokenOut,
		AmountIn:        rec.AmountIn,
		AmountOut:       rec.AmountOut,
		TransactionHash: rec.TransactionHash,
		FeeTier:         rec.FeeTier,
		PriceImpact:     rec.PriceImpact,
		Status:          string(rec.Status),
		Strategy:        rec.Strategy,
		Profit:          rec.Profit,
		Pnl:             rec.Pnl,
		PnlPercentage:   rec.PnlPercentage,
	}
}

package trader

import (
	"sync"
	"time"
)

// resultsCapacity bounds the in-memory results buffer.
const resultsCapacity = 100

// ExecutionResult is one strategy execution outcome, kept for external
// observability via Status and the HTTP API.
type ExecutionResult struct {
	Strategy        string    `json:"strategy"`
	Timestamp       time.Time `json:"timestamp"`
	TokenIn         string    `json:"token_in,omitempty"`
	TokenOut        string    `json:"token_out,omitempty"`
	AmountIn        string    `json:"amount_in,omitempty"`
	AmountOut       string    `json:"amount_out,omitempty"`
	TransactionHash string    `json:"transaction_hash,omitempty"`
	Success         bool      `json:"success"`
	Skipped         bool      `json:"skipped"`
	Error           string    `json:"error,omitempty"`
}

// ResultsBuffer is a bounded buffer of execution results shared by all
// running strategies, newest first.
type ResultsBuffer struct {
	mu      sync.Mutex
	results []ExecutionResult
}

// NewResultsBuffer creates an empty results buffer.
func NewResultsBuffer() *ResultsBuffer {
	return &ResultsBuffer{}
}

// Add records a result, evicting the oldest past capacity.
func (b *ResultsBuffer) Add(result ExecutionResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results = append([]ExecutionResult{result}, b.results...)
	if len(b.results) > resultsCapacity {
		b.results = b.results[:resultsCapacity]
	}
}

// Len reports how many results have accumulated.
func (b *ResultsBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.results)
}

// Recent returns a copy of the newest n results.
func (b *ResultsBuffer) Recent(n int) []ExecutionResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n <= 0 || n > len(b.results) {
		n = len(b.results)
	}
	out := make([]ExecutionResult, n)
	copy(out, b.results[:n])
	return out
}

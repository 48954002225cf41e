package main

import (
	"net/http"
	"strings"
	"time"

	"galachain-trade-bot-go/internal/models"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log *zap.Logger
	db  *gorm.DB
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, db *gorm.DB) *APIHandler {
	return &APIHandler{log: log, db: db}
}

// TransactionsHandler returns the recorded transactions, most recent first.
func (h *APIHandler) TransactionsHandler(w http.ResponseWriter, r *http.Request) {
	var rows []models.LedgerRow
	if err := h.db.Order("timestamp desc").Find(&rows).Error; err != nil {
		h.log.Error("Failed to get transactions from database", zap.Error(err))
		http.Error(w, "Failed to get transactions", http.StatusInternalServerError)
		return
	}

	records := make([]models.TransactionRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.ToRecord())
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// StatsDetail holds calculated statistics for a given period.
type StatsDetail struct {
	TotalSwaps      int64   `json:"total_swaps"`
	ProfitableSwaps int64   `json:"profitable_swaps"`
	WinRate         float64 `json:"win_rate"`
	TotalPnlUSD     string  `json:"total_pnl_usd"`
}

// StatisticsResponse is the structure for the /api/statistics endpoint.
type StatisticsResponse struct {
	Since24h StatsDetail `json:"since_24h"`
	AllTime  StatsDetail `json:"all_time"`
}

// pnlUSD extracts the signed USD amount from a formatted PnL string such
// as "+$0.0090" or "-$1.2345". Ratio fallbacks and "N/A" yield no value.
func pnlUSD(pnl string) (decimal.Decimal, bool) {
	var negative bool
	switch {
	case strings.HasPrefix(pnl, "+$"):
	case strings.HasPrefix(pnl, "-$"):
		negative = true
	default:
		return decimal.Decimal{}, false
	}
	value, err := decimal.NewFromString(pnl[2:])
	if err != nil {
		return decimal.Decimal{}, false
	}
	if negative {
		value = value.Neg()
	}
	return value, true
}

// StatisticsHandler calculates and returns swap statistics.
func (h *APIHandler) StatisticsHandler(w http.ResponseWriter, r *http.Request) {
	var rows []models.LedgerRow
	query := h.db.Where("type = ? AND status = ?", models.TypeSwap, models.StatusCompleted)
	if err := query.Find(&rows).Error; err != nil {
		h.log.Error("Failed to get transactions for statistics", zap.Error(err))
		http.Error(w, "Failed to calculate statistics", http.StatusInternalServerError)
		return
	}

	since24h := time.Now().Add(-24 * time.Hour).UnixMilli()

	stats24h := StatsDetail{TotalPnlUSD: "0"}
	statsAllTime := StatsDetail{TotalPnlUSD: "0"}
	total24h := decimal.Zero
	totalAllTime := decimal.Zero

	for _, row := range rows {
		value, ok := pnlUSD(row.Pnl)
		if !ok {
			continue
		}

		statsAllTime.TotalSwaps++
		if value.IsPositive() {
			statsAllTime.ProfitableSwaps++
		}
		totalAllTime = totalAllTime.Add(value)

		if row.Timestamp >= since24h {
			stats24h.TotalSwaps++
			if value.IsPositive() {
				stats24h.ProfitableSwaps++
			}
			total24h = total24h.Add(value)
		}
	}

	if statsAllTime.TotalSwaps > 0 {
		statsAllTime.WinRate = float64(statsAllTime.ProfitableSwaps) / float64(statsAllTime.TotalSwaps)
	}
	if stats24h.TotalSwaps > 0 {
		stats24h.WinRate = float64(stats24h.ProfitableSwaps) / float64(stats24h.TotalSwaps)
	}
	statsAllTime.TotalPnlUSD = totalAllTime.StringFixed(4)
	stats24h.TotalPnlUSD = total24h.StringFixed(4)

	response := StatisticsResponse{
		Since24h: stats24h,
		AllTime:  statsAllTime,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

package model

import (
	"math"
	"time"
)

// -----------------------------------------------------------------------------
// Streaming Types
// -----------------------------------------------------------------------------

// TickerRecord is one decoded ticker update for a single market.
type TickerRecord struct {
	Code        string  `json:"code"`         // Market code (e.g., "KRW-BTC")
	TradePrice  float64 `json:"trade_price"`  // Last trade price
	TradeVolume float64 `json:"trade_volume"` // Last trade volume
	Change      string  `json:"change"`       // "RISE", "EVEN" or "FALL" vs previous close
	ChangeRate  float64 `json:"change_rate"`  // Absolute change rate vs previous close
	Timestamp   uint64  `json:"timestamp"`    // Event time (ms since epoch)
}

// Time returns the event timestamp as a time.Time in UTC. Timestamps beyond
// the int64 range are clamped.
func (r TickerRecord) Time() time.Time {
	ms := int64(math.MaxInt64)
	if r.Timestamp <= math.MaxInt64 {
		ms = int64(r.Timestamp)
	}
	return time.UnixMilli(ms).UTC()
}

// -----------------------------------------------------------------------------
// Catalog Types
// -----------------------------------------------------------------------------

// MarketDescriptor is one entry of the exchange's market catalog.
type MarketDescriptor struct {
	Market        string `json:"market"`                   // Market code (e.g., "KRW-BTC")
	KoreanName    string `json:"korean_name"`              // Localized display name
	EnglishName   string `json:"english_name"`             // English display name
	MarketWarning string `json:"market_warning,omitempty"` // "NONE" or "CAUTION", only with isDetails=true
}

// Quote returns the quote currency of the market code ("KRW" for "KRW-BTC").
func (m MarketDescriptor) Quote() string {
	for i := 0; i < len(m.Market); i++ {
		if m.Market[i] == '-' {
			return m.Market[:i]
		}
	}
	return ""
}

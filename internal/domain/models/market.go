package models

import (
	"encoding/json"
	"strings"
	"time"
)

// DataType identifies a market data stream kind.
type DataType string

const (
	DataTypeQuote  DataType = "quote"
	DataTypeTrade  DataType = "trade"
	DataTypeBar    DataType = "bar"
	DataTypeNews   DataType = "news"
	DataTypeCrypto DataType = "crypto"
)

// IsValidDataType reports whether dt is a supported stream kind.
func IsValidDataType(dt DataType) bool {
	switch dt {
	case DataTypeQuote, DataTypeTrade, DataTypeBar, DataTypeNews, DataTypeCrypto:
		return true
	default:
		return false
	}
}

// Frequency is the bar aggregation interval. Only meaningful for bars.
type Frequency string

const (
	Freq1Min  Frequency = "1min"
	Freq5Min  Frequency = "5min"
	Freq15Min Frequency = "15min"
	Freq1Hour Frequency = "1hour"
	Freq1Day  Frequency = "1day"
)

// Signal timeframes accepted by the API. A timeframe names the signal
// horizon, not a bar interval; generators map it onto the Frequency whose
// bars back that horizon.
const (
	Timeframe1D = "1D"
	Timeframe1W = "1W"
	Timeframe1M = "1M"
)

// Quote is a top-of-book snapshot.
type Quote struct {
	Symbol    string  `json:"symbol"`
	BidPrice  float64 `json:"bid_price"`
	BidSize   float64 `json:"bid_size"`
	AskPrice  float64 `json:"ask_price"`
	AskSize   float64 `json:"ask_size"`
	LastPrice float64 `json:"last_price"`
	Timestamp int64   `json:"t"` // unix ms from provider
}

// Trade is a single executed trade print.
type Trade struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Size      float64 `json:"size"`
	Timestamp int64   `json:"t"`
}

// Bar is an OHLCV aggregate for one interval.
type Bar struct {
	Symbol    string  `json:"symbol"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	Timestamp int64   `json:"t"`
}

// NewsItem is a headline attached to one or more symbols.
type NewsItem struct {
	ID        string   `json:"id"`
	Headline  string   `json:"headline"`
	Summary   string   `json:"summary"`
	Source    string   `json:"source"`
	Symbols   []string `json:"symbols"`
	Timestamp int64    `json:"t"`
}

// MarketData is one routed payload from the provider. Data stays raw JSON so the
// cache and the downstream tap are agnostic to the per-type shape.
type MarketData struct {
	Symbol    string          `json:"symbol"`
	DataType  DataType        `json:"data_type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp,omitempty"` // provider-side unix ms, 0 when absent
}

// NormalizeSymbols uppercases and deduplicates while preserving first-seen order.
func NormalizeSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// CacheEntry is a cached last value plus its local receipt time.
type CacheEntry struct {
	Symbol     string          `json:"symbol"`
	DataType   DataType        `json:"data_type"`
	Data       json.RawMessage `json:"data"`
	ReceivedAt time.Time       `json:"received_at"`
}

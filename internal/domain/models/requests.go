package models

// Requests for the HTTP API. Defined in domain for consistency and reuse.

type SubscribeRequest struct {
	Symbols   []string `json:"symbols" validate:"required,min=1,dive,required"`
	DataType  string   `json:"data_type" validate:"required,oneof=quote trade bar news crypto"`
	Frequency string   `json:"frequency" default:"1min" validate:"omitempty,oneof=1min 5min 15min 1hour 1day"`
}

type MarketDataRequest struct {
	Symbol   string `param:"symbol" validate:"required"`
	DataType string `param:"type" validate:"omitempty,oneof=quote trade bar news crypto"`
	MaxAgeMs int64  `query:"max_age_ms" default:"60000" validate:"gte=0"`
}

type SignalRequest struct {
	Symbol    string `param:"symbol" validate:"required"`
	Model     string `param:"model" validate:"omitempty,oneof=technical sentiment momentum mean_reversion breakout"`
	Timeframe string `query:"timeframe" default:"1D" validate:"oneof=1D 1W 1M"`
}

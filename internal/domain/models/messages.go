package models

import "encoding/json"

// Wire message kinds exchanged with the market-data provider. The envelope is
// shared by both transports; the polling transport synthesizes the inbound side.
const (
	MsgMarketData    = "market_data"
	MsgSubscribed    = "subscribed"
	MsgUnsubscribed  = "unsubscribed"
	MsgSubscriptions = "subscriptions_list"
	MsgFeeds         = "available_feeds"
	MsgPong          = "pong"
	MsgError         = "error"

	MsgSubscribe         = "subscribe"
	MsgUnsubscribe       = "unsubscribe"
	MsgListSubscriptions = "list_subscriptions"
	MsgGetFeeds          = "get_available_feeds"
	MsgPing              = "ping"
)

// Envelope is the outer frame of every provider message.
type Envelope struct {
	Type string `json:"type"`

	// market_data
	Symbol    string          `json:"symbol,omitempty"`
	DataType  DataType        `json:"data_type,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`

	// subscribed / unsubscribed / subscribe / unsubscribe
	SubscriptionID string    `json:"subscription_id,omitempty"`
	RequestID      string    `json:"request_id,omitempty"`
	Symbols        []string  `json:"symbols,omitempty"`
	Frequency      Frequency `json:"frequency,omitempty"`

	// subscriptions_list
	Subscriptions []Subscription `json:"subscriptions,omitempty"`

	// available_feeds
	Feeds []string `json:"feeds,omitempty"`

	// error
	Message string `json:"message,omitempty"`
}

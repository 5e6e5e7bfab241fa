package models

import "time"

// Subscription is one confirmed stream subscription. The id is assigned by the
// provider at confirmation time (WebSocket) or locally (polling).
type Subscription struct {
	ID           string    `json:"id"`
	Symbols      []string  `json:"symbols"` // uppercased, deduplicated, never empty
	DataType     DataType  `json:"data_type"`
	Frequency    Frequency `json:"frequency,omitempty"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// Covers reports whether the subscription includes the given symbol.
func (s *Subscription) Covers(symbol string) bool {
	for _, sym := range s.Symbols {
		if sym == symbol {
			return true
		}
	}
	return false
}

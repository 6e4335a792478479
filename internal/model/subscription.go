package model

import (
	"encoding/json"
	"strings"
)

// Subscription defaults matching the exchange's sample request.
const (
	DefaultTicket      = "test"
	DefaultChannelType = "ticker"
	DefaultCode        = "KRW-BTC"
)

// SubscriptionRequest is the payload sent once right after the WebSocket handshake.
// On the wire it is a two-element array: a ticket object followed by a type object.
type SubscriptionRequest struct {
	Ticket         string   // Opaque correlation identifier
	Type           string   // Channel kind: "ticker", "trade", "orderbook"
	Codes          []string // Market codes to stream
	IsOnlySnapshot bool     // Ask for the snapshot message only
	IsOnlyRealtime bool     // Ask for realtime messages only
}

// DefaultSubscription returns the single-symbol ticker subscription.
func DefaultSubscription() SubscriptionRequest {
	return SubscriptionRequest{
		Ticket: DefaultTicket,
		Type:   DefaultChannelType,
		Codes:  []string{DefaultCode},
	}
}

// ticketField is the first element of the wire array.
type ticketField struct {
	Ticket string `json:"ticket"`
}

// typeField is the second element of the wire array.
type typeField struct {
	Type           string   `json:"type"`
	Codes          []string `json:"codes"`
	IsOnlySnapshot bool     `json:"isOnlySnapshot,omitempty"`
	IsOnlyRealtime bool     `json:"isOnlyRealtime,omitempty"`
}

// MarshalJSON encodes the request as [{"ticket":..},{"type":..,"codes":[..]}].
func (s SubscriptionRequest) MarshalJSON() ([]byte, error) {
	codes := s.Codes
	if codes == nil {
		codes = []string{}
	}
	return json.Marshal([]any{
		ticketField{Ticket: s.Ticket},
		typeField{
			Type:           s.Type,
			Codes:          codes,
			IsOnlySnapshot: s.IsOnlySnapshot,
			IsOnlyRealtime: s.IsOnlyRealtime,
		},
	})
}

// String returns the compact wire text of the request.
func (s SubscriptionRequest) String() string {
	data, err := s.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(data)
}

// Summary is a short human-readable description for logs.
func (s SubscriptionRequest) Summary() string {
	const maxCodes = 5
	codes := s.Codes
	suffix := ""
	if len(codes) > maxCodes {
		codes = codes[:maxCodes]
		suffix = ",..."
	}
	return s.Type + "[" + strings.Join(codes, ",") + suffix + "]"
}

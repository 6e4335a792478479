package router

import (
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/rickgao/upbit-ticker/internal/connection"
	"github.com/rickgao/upbit-ticker/internal/model"
)

// Decode parses a binary ticker frame. Every field of the record is required.
func Decode(f connection.Frame) (model.TickerRecord, error) {
	if f.Type != connection.FrameBinary {
		return model.TickerRecord{}, fmt.Errorf("%w: %s", ErrNotBinary, f.Type)
	}
	return DecodeTicker(f.Data)
}

// DecodeTicker parses a ticker payload.
func DecodeTicker(data []byte) (model.TickerRecord, error) {
	if !utf8.Valid(data) {
		return model.TickerRecord{}, ErrInvalidUTF8
	}

	var wire tickerWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return model.TickerRecord{}, fmt.Errorf("parse ticker: %w", err)
	}

	switch {
	case wire.Code == nil:
		return model.TickerRecord{}, &MissingFieldError{Field: "code"}
	case wire.TradePrice == nil:
		return model.TickerRecord{}, &MissingFieldError{Field: "trade_price"}
	case wire.TradeVolume == nil:
		return model.TickerRecord{}, &MissingFieldError{Field: "trade_volume"}
	case wire.Change == nil:
		return model.TickerRecord{}, &MissingFieldError{Field: "change"}
	case wire.ChangeRate == nil:
		return model.TickerRecord{}, &MissingFieldError{Field: "change_rate"}
	case wire.Timestamp == nil:
		return model.TickerRecord{}, &MissingFieldError{Field: "timestamp"}
	}
	if *wire.Timestamp > math.MaxInt64 {
		return model.TickerRecord{}, fmt.Errorf("%w: %d", ErrTimestampRange, *wire.Timestamp)
	}

	return model.TickerRecord{
		Code:        *wire.Code,
		TradePrice:  *wire.TradePrice,
		TradeVolume: *wire.TradeVolume,
		Change:      *wire.Change,
		ChangeRate:  *wire.ChangeRate,
		Timestamp:   *wire.Timestamp,
	}, nil
}

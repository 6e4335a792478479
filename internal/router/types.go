package router

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrNotBinary      = errors.New("not a binary frame")
	ErrInvalidUTF8    = errors.New("frame is not valid UTF-8")
	ErrTimestampRange = errors.New("timestamp out of range")
)

// MissingFieldError reports a required ticker field absent from a frame.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q", e.Field)
}

// Rejection reasons reported to an Observer.
const (
	ReasonNotBinary  = "not_binary"
	ReasonParseError = "parse_error"
)

// Stats contains runtime statistics.
type Stats struct {
	FramesReceived int64 `json:"frames_received"`
	RecordsRouted  int64 `json:"records_routed"`
	ParseErrors    int64 `json:"parse_errors"`
	NonBinary      int64 `json:"non_binary"`
}

// tickerWire is the ticker frame as sent by Upbit. Pointers distinguish an
// absent (or null) field from a zero value.
type tickerWire struct {
	Code        *string  `json:"code"`
	TradePrice  *float64 `json:"trade_price"`
	TradeVolume *float64 `json:"trade_volume"`
	Change      *string  `json:"change"`
	ChangeRate  *float64 `json:"change_rate"`
	Timestamp   *uint64  `json:"timestamp"`
}

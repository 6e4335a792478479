// Package model defines the data types shared across the ticker board.
//
// Conventions:
//   - Market codes use Upbit's QUOTE-BASE form (e.g. "KRW-BTC")
//   - Timestamps on the wire are uint64 milliseconds since Unix epoch
//   - Prices and volumes are float64, as Upbit publishes them
package model

// Package metrics provides Prometheus metrics and the health endpoint.
//
// Key metrics:
//   - Frames received by WebSocket opcode
//   - Ticker records routed per market, and frames rejected by reason
//   - Sessions finished by final state
//   - Last trade price per market
package metrics

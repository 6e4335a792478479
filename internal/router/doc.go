// Package router implements the Frame Decoder.
//
// Binary frames are parsed into model.TickerRecord and pushed to a Sink.
// Text frames and malformed payloads are logged, counted, and dropped
// without touching the sink.
package router

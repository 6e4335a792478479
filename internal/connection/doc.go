// Package connection implements the Feed Connector.
//
// A Client owns one WebSocket to the Upbit streaming endpoint. The Manager
// runs a bounded queue of connection Requests over a pool of workers; each
// worker dials, sends the subscription text once, and streams frames into the
// request's handler until the socket fails or the context is cancelled.
// Callers await the outcome through the Pending returned by Submit.
//
// No session is ever reconnected.
package connection

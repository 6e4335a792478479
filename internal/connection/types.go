package connection

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
	ErrManagerStopped  = errors.New("connection manager stopped")
	ErrNoHandler       = errors.New("request has no frame handler")
)

// FrameType is the WebSocket opcode of a received frame.
type FrameType int

const (
	FrameText   FrameType = websocket.TextMessage
	FrameBinary FrameType = websocket.BinaryMessage
)

func (t FrameType) String() string {
	switch t {
	case FrameText:
		return "text"
	case FrameBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Frame is one message read from the socket, stamped on receipt.
type Frame struct {
	Type       FrameType
	Data       []byte
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// State is the lifecycle position of one connection session.
// Sessions only move forward; there is no reconnect edge.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateSubscribed
	StateStreaming
	StateClosed     // read error or EOF
	StateTerminated // cancelled from outside
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateSubscribed:
		return "subscribed"
	case StateStreaming:
		return "streaming"
	case StateClosed:
		return "closed"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Final reports whether no further transition is possible.
func (s State) Final() bool {
	return s == StateClosed || s == StateTerminated
}

// FrameHandler consumes frames of a single connection, in arrival order,
// on the worker goroutine that owns the connection.
type FrameHandler interface {
	HandleFrame(f Frame)
}

// FrameHandlerFunc adapts a function to FrameHandler.
type FrameHandlerFunc func(f Frame)

// HandleFrame calls fn(f).
func (fn FrameHandlerFunc) HandleFrame(f Frame) {
	fn(f)
}

// Request asks the manager to open one connection, send Subscription once,
// and stream frames into Handler until the connection ends.
type Request struct {
	ID           string // assigned by Submit when empty
	URL          string
	Subscription string
	Handler      FrameHandler
}

// Result is the outcome of one Request.
type Result struct {
	RequestID string
	URL       string
	State     State // final state reached
	Frames    int   // frames delivered to the handler
	Err       error // nil on clean termination
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // WebSocket URL (e.g., wss://api.upbit.com/websocket/v1)
	HandshakeTimeout time.Duration // Dial + upgrade deadline
	PingInterval     time.Duration // How often we ping the server
	PingTimeout      time.Duration // Max time without ping/pong before considering connection stale
	WriteTimeout     time.Duration // Write deadline for sends
	BufferSize       int           // Frame channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     30 * time.Second,
		PingTimeout:      120 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       1024,
	}
}

// ManagerConfig configures the Connection Manager.
type ManagerConfig struct {
	WorkerCount int          // Number of session workers
	QueueSize   int          // Pending request capacity
	Client      ClientConfig // Template for every connection; URL comes from the Request
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		WorkerCount: 1,
		QueueSize:   16,
		Client:      DefaultClientConfig(),
	}
}

// ManagerStats provides statistics about the connection manager.
type ManagerStats struct {
	Workers   int            `json:"workers"`
	Queued    int            `json:"queued"`
	Active    int            `json:"active"`
	Completed int            `json:"completed"`
	Failed    int            `json:"failed"`
	Frames    int64          `json:"frames"`
	States    map[string]int `json:"states"` // live sessions by state
}

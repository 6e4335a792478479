package connection

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// mockWSServer creates a test WebSocket server.
func mockWSServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))

	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func testClientConfig(url string) ClientConfig {
	return ClientConfig{
		URL:              url,
		HandshakeTimeout: 2 * time.Second,
		PingTimeout:      30 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       100,
	}
}

// drainUntilClosed reads the remaining frames of a client.
func drainUntilClosed(t *testing.T, c Client) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-c.Frames():
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("timeout waiting for frame channel to close")
		}
	}
}

func TestClient_Connect(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		// Just keep the connection open
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
		}
	})
	defer server.Close()

	client := NewClient(testClientConfig(wsURL(server)), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if !client.IsConnected() {
		t.Error("expected IsConnected to return true")
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	if client.IsConnected() {
		t.Error("expected IsConnected to return false after Close")
	}

	// Close unblocks the read loop, which closes the frame channel
	drainUntilClosed(t, client)
}

func TestClient_ConnectFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no upgrade here", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(testClientConfig(wsURL(server)), nil)

	err := client.Connect(context.Background())
	if err == nil {
		t.Fatal("expected handshake error, got nil")
	}
	if !errors.Is(err, websocket.ErrBadHandshake) {
		t.Errorf("error = %v, want ErrBadHandshake", err)
	}
	if !strings.Contains(err.Error(), "status 403") {
		t.Errorf("error = %v, want it to mention status 403", err)
	}
	if client.IsConnected() {
		t.Error("expected IsConnected to return false")
	}

	// Closing a never-connected client still closes its frame channel
	if err := client.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	drainUntilClosed(t, client)
}

func TestClient_ConnectAfterClose(t *testing.T) {
	client := NewClient(testClientConfig("ws://127.0.0.1:1"), nil)
	client.Close()

	if err := client.Connect(context.Background()); !errors.Is(err, ErrAlreadyClosed) {
		t.Errorf("Connect after Close = %v, want ErrAlreadyClosed", err)
	}
}

func TestClient_Send(t *testing.T) {
	var received []byte
	var receivedType int
	var mu sync.Mutex

	server := mockWSServer(t, func(conn *websocket.Conn) {
		for {
			msgType, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			mu.Lock()
			received = msg
			receivedType = msgType
			mu.Unlock()
		}
	})
	defer server.Close()

	client := NewClient(testClientConfig(wsURL(server)), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	testMsg := []byte(`[{"ticket":"test"},{"type":"ticker","codes":["KRW-BTC"]}]`)
	if err := client.Send(testMsg); err != nil {
		t.Errorf("Send failed: %v", err)
	}

	// Wait for message to be received
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if string(received) != string(testMsg) {
		t.Errorf("received %q, want %q", received, testMsg)
	}
	if receivedType != websocket.TextMessage {
		t.Errorf("message type = %d, want text (%d)", receivedType, websocket.TextMessage)
	}
}

func TestClient_Frames(t *testing.T) {
	testFrames := []struct {
		typ  int
		data string
	}{
		{websocket.BinaryMessage, `{"code":"KRW-BTC","n":1}`},
		{websocket.TextMessage, `{"status":"UP"}`},
		{websocket.BinaryMessage, `{"code":"KRW-BTC","n":3}`},
	}

	server := mockWSServer(t, func(conn *websocket.Conn) {
		for _, f := range testFrames {
			if err := conn.WriteMessage(f.typ, []byte(f.data)); err != nil {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		// Keep connection open
		time.Sleep(time.Second)
	})
	defer server.Close()

	client := NewClient(testClientConfig(wsURL(server)), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	var received []Frame
	timeout := time.After(500 * time.Millisecond)

	for i := 0; i < len(testFrames); i++ {
		select {
		case f := <-client.Frames():
			received = append(received, f)
			if f.ReceivedAt.IsZero() {
				t.Error("ReceivedAt should not be zero")
			}
		case <-timeout:
			t.Fatalf("timeout waiting for frames, received %d of %d", len(received), len(testFrames))
		}
	}

	for i, want := range testFrames {
		if string(received[i].Data) != want.data {
			t.Errorf("frame %d: got %q, want %q", i, received[i].Data, want.data)
		}
		if int(received[i].Type) != want.typ {
			t.Errorf("frame %d: type = %v, want %d", i, received[i].Type, want.typ)
		}
	}
}

func TestClient_ReadErrorAfterFrames(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.BinaryMessage, []byte("one"))
		conn.WriteMessage(websocket.BinaryMessage, []byte("two"))
		// Returning drops the connection without a close frame
	})
	defer server.Close()

	client := NewClient(testClientConfig(wsURL(server)), nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	var got []string
	timeout := time.After(2 * time.Second)
	for done := false; !done; {
		select {
		case f, ok := <-client.Frames():
			if !ok {
				done = true
				break
			}
			got = append(got, string(f.Data))
		case <-timeout:
			t.Fatal("timeout waiting for read loop to end")
		}
	}

	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("frames = %v, want [one two]", got)
	}

	select {
	case err := <-client.Errors():
		if err == nil {
			t.Error("expected non-nil read error")
		}
	default:
		t.Error("expected read error to be reported before the frame channel closed")
	}
}

func TestClient_SendNotConnected(t *testing.T) {
	client := NewClient(testClientConfig("ws://localhost:12345"), nil)

	err := client.Send([]byte("test"))
	if err != ErrNotConnected {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestClient_DoubleClose(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		time.Sleep(time.Second)
	})
	defer server.Close()

	client := NewClient(testClientConfig(wsURL(server)), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	// First close should succeed
	if err := client.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}

	// Second close should be no-op
	if err := client.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestClient_PingHandler(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		if err := conn.WriteControl(websocket.PingMessage, []byte("heartbeat"), time.Now().Add(time.Second)); err != nil {
			t.Logf("ping error: %v", err)
			return
		}
		time.Sleep(500 * time.Millisecond)
	})
	defer server.Close()

	client := NewClient(testClientConfig(wsURL(server)), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	// Give time for ping to be processed
	time.Sleep(200 * time.Millisecond)

	if !client.IsConnected() {
		t.Error("expected client to be connected after ping")
	}
}

func TestClient_StaleConnection(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		// Never read, so our pings are never answered with pongs
		time.Sleep(time.Second)
	})
	defer server.Close()

	cfg := testClientConfig(wsURL(server))
	cfg.PingInterval = 20 * time.Millisecond
	cfg.PingTimeout = 30 * time.Millisecond

	client := NewClient(cfg, nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	select {
	case err := <-client.Errors():
		if !errors.Is(err, ErrStaleConnection) {
			t.Errorf("error = %v, want ErrStaleConnection", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for stale connection error")
	}
}

func TestStateAndFrameTypeStrings(t *testing.T) {
	states := map[State]string{
		StateDisconnected: "disconnected",
		StateConnected:    "connected",
		StateSubscribed:   "subscribed",
		StateStreaming:    "streaming",
		StateClosed:       "closed",
		StateTerminated:   "terminated",
		State(99):         "unknown",
	}
	for s, want := range states {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}

	if !StateClosed.Final() || !StateTerminated.Final() || StateStreaming.Final() {
		t.Error("only closed and terminated should be final")
	}

	if FrameBinary.String() != "binary" || FrameText.String() != "text" {
		t.Errorf("frame type strings = %q, %q", FrameBinary, FrameText)
	}
}

func TestDefaultConfigs(t *testing.T) {
	clientCfg := DefaultClientConfig()
	if clientCfg.HandshakeTimeout != 10*time.Second {
		t.Errorf("HandshakeTimeout = %v, want 10s", clientCfg.HandshakeTimeout)
	}
	if clientCfg.PingInterval != 30*time.Second {
		t.Errorf("PingInterval = %v, want 30s", clientCfg.PingInterval)
	}
	if clientCfg.BufferSize != 1024 {
		t.Errorf("BufferSize = %d, want 1024", clientCfg.BufferSize)
	}

	mgrCfg := DefaultManagerConfig()
	if mgrCfg.WorkerCount != 1 {
		t.Errorf("WorkerCount = %d, want 1", mgrCfg.WorkerCount)
	}
	if mgrCfg.QueueSize != 16 {
		t.Errorf("QueueSize = %d, want 16", mgrCfg.QueueSize)
	}
}

package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Manager dispatches connection requests to a pool of session workers.
type Manager interface {
	// Start launches the workers. Sessions live until ctx is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop cancels all sessions and waits for workers up to ctx's deadline.
	// Requests still queued resolve with ErrManagerStopped.
	Stop(ctx context.Context) error

	// Submit enqueues a request, blocking while the queue is full.
	Submit(ctx context.Context, req Request) (*Pending, error)

	// Stats returns current queue and session statistics.
	Stats() ManagerStats
}

// ClientFactory builds the client for one session.
type ClientFactory func(cfg ClientConfig, logger *slog.Logger) Client

// ManagerOption configures a Manager.
type ManagerOption func(*manager)

// WithClientFactory replaces NewClient.
func WithClientFactory(f ClientFactory) ManagerOption {
	return func(m *manager) {
		m.newClient = f
	}
}

// WithResultHook registers fn to be called with every finished session's result.
func WithResultHook(fn func(Result)) ManagerOption {
	return func(m *manager) {
		m.hooks = append(m.hooks, fn)
	}
}

// WithFrameHook registers fn to be called before every frame is handed to a request handler.
func WithFrameHook(fn func(Frame)) ManagerOption {
	return func(m *manager) {
		m.frameHooks = append(m.frameHooks, fn)
	}
}

type job struct {
	req     Request
	pending *Pending
}

// manager implements the Manager interface.
type manager struct {
	cfg        ManagerConfig
	logger     *slog.Logger
	newClient  ClientFactory
	hooks      []func(Result)
	frameHooks []func(Frame)

	queue chan job

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu guards the lifecycle flags; Submit holds it shared while enqueueing
	mu      sync.RWMutex
	started bool
	stopped bool

	statsMu   sync.Mutex
	sessions  map[string]State // request ID → current state
	completed int
	failed    int
	frames    atomic.Int64
}

// NewManager creates a new Connection Manager.
func NewManager(cfg ManagerConfig, logger *slog.Logger, opts ...ManagerOption) Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = cfg.WorkerCount
	}

	m := &manager{
		cfg:       cfg,
		logger:    logger,
		newClient: NewClient,
		queue:     make(chan job, cfg.QueueSize),
		sessions:  make(map[string]State),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins the connection manager.
func (m *manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrManagerStopped
	}
	if m.started {
		return errors.New("connection manager already started")
	}
	m.started = true
	m.ctx, m.cancel = context.WithCancel(ctx)

	for i := 1; i <= m.cfg.WorkerCount; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}

	m.logger.Info("connection manager started",
		"workers", m.cfg.WorkerCount,
		"queue_size", m.cfg.QueueSize,
	)

	return nil
}

// Stop gracefully shuts down.
func (m *manager) Stop(ctx context.Context) error {
	m.logger.Info("stopping connection manager")

	if m.cancel != nil {
		m.cancel()
	}

	// Wait for in-flight submits to observe cancellation
	m.mu.Lock()
	alreadyStopped := m.stopped
	m.stopped = true
	m.mu.Unlock()
	if alreadyStopped {
		return nil
	}

	// Wait for workers with timeout
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("shutdown timeout, workers still running")
		err = fmt.Errorf("stop connection manager: %w", ctx.Err())
	}

	m.discardQueued()

	m.logger.Info("connection manager stopped")
	return err
}

// Submit enqueues a request.
func (m *manager) Submit(ctx context.Context, req Request) (*Pending, error) {
	if req.Handler == nil {
		return nil, ErrNoHandler
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.started || m.stopped {
		return nil, ErrManagerStopped
	}

	p := newPending(req.ID)
	select {
	case m.queue <- job{req: req, pending: p}:
		m.logger.Debug("connection request queued", "request_id", req.ID, "url", req.URL)
		return p, nil
	case <-m.ctx.Done():
		return nil, ErrManagerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stats returns current statistics.
func (m *manager) Stats() ManagerStats {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()

	states := make(map[string]int, len(m.sessions))
	for _, s := range m.sessions {
		states[s.String()]++
	}

	return ManagerStats{
		Workers:   m.cfg.WorkerCount,
		Queued:    len(m.queue),
		Active:    len(m.sessions),
		Completed: m.completed,
		Failed:    m.failed,
		Frames:    m.frames.Load(),
		States:    states,
	}
}

// discardQueued resolves requests that no worker picked up.
func (m *manager) discardQueued() {
	for {
		select {
		case j := <-m.queue:
			m.finish(j, Result{
				RequestID: j.req.ID,
				URL:       j.req.URL,
				State:     StateTerminated,
				Err:       ErrManagerStopped,
			})
		default:
			return
		}
	}
}

// worker runs queued sessions one at a time.
func (m *manager) worker(id int) {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case j := <-m.queue:
			m.finish(j, m.runSession(id, j.req))
		}
	}
}

func (m *manager) finish(j job, res Result) {
	m.statsMu.Lock()
	delete(m.sessions, j.req.ID)
	if res.Err != nil {
		m.failed++
	} else {
		m.completed++
	}
	m.statsMu.Unlock()

	for _, hook := range m.hooks {
		hook(res)
	}
	j.pending.resolve(res)
}

func (m *manager) setState(id string, s State, logger *slog.Logger) {
	m.statsMu.Lock()
	m.sessions[id] = s
	m.statsMu.Unlock()
	logger.Debug("session state", "state", s.String())
}

// runSession drives one request through
// Disconnected → Connected → Subscribed → Streaming → {Closed | Terminated}.
func (m *manager) runSession(workerID int, req Request) Result {
	logger := m.logger.With("request_id", req.ID, "worker", workerID)
	res := Result{RequestID: req.ID, URL: req.URL, State: StateDisconnected}

	if m.ctx.Err() != nil {
		res.State = StateTerminated
		res.Err = ErrManagerStopped
		return res
	}
	m.setState(req.ID, StateDisconnected, logger)

	cfg := m.cfg.Client
	cfg.URL = req.URL
	client := m.newClient(cfg, logger)

	if err := client.Connect(m.ctx); err != nil {
		if m.ctx.Err() != nil {
			res.State = StateTerminated
			return res
		}
		logger.Error("connection failed", "url", req.URL, "error", err)
		res.Err = fmt.Errorf("connect: %w", err)
		return res
	}
	res.State = StateConnected
	m.setState(req.ID, StateConnected, logger)
	logger.Info("websocket connected", "url", req.URL)

	if err := client.Send([]byte(req.Subscription)); err != nil {
		client.Close()
		logger.Error("subscribe failed", "error", err)
		res.State = StateClosed
		res.Err = fmt.Errorf("subscribe: %w", err)
		return res
	}
	res.State = StateSubscribed
	m.setState(req.ID, StateSubscribed, logger)
	logger.Info("subscription sent", "bytes", len(req.Subscription))

	res.State = StateStreaming
	m.setState(req.ID, StateStreaming, logger)
	res.State, res.Err = m.stream(client, req.Handler, &res.Frames, logger)

	logger.Info("session ended",
		"state", res.State.String(),
		"frames", res.Frames,
	)
	return res
}

// stream delivers frames in arrival order until the context is cancelled
// or the client reports an error. Frames buffered ahead of an error are
// delivered before the session closes.
func (m *manager) stream(client Client, handler FrameHandler, count *int, logger *slog.Logger) (State, error) {
	// The read loop may end on its own; Close still has to stop the heartbeat
	// and release the socket.
	defer client.Close()

	frames := client.Frames()

	deliver := func(f Frame) {
		for _, hook := range m.frameHooks {
			hook(f)
		}
		handler.HandleFrame(f)
		*count++
		m.frames.Add(1)
	}

	closed := func(err error) (State, error) {
		if err == nil {
			return StateClosed, nil
		}
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			logger.Info("connection closed by server", "error", err)
		} else {
			logger.Error("read failed", "error", err)
		}
		return StateClosed, fmt.Errorf("read: %w", err)
	}

	for {
		select {
		case <-m.ctx.Done():
			client.Close()
			return StateTerminated, nil

		case f, ok := <-frames:
			if !ok {
				// The read loop reports its error before closing the channel
				select {
				case err := <-client.Errors():
					return closed(err)
				default:
					return closed(nil)
				}
			}
			deliver(f)

		case err := <-client.Errors():
			client.Close()
			for f := range frames {
				deliver(f)
			}
			return closed(err)
		}
	}
}
